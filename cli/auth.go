package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Long: `Authenticates against the backend and saves the token in SESSION_FILE.
The password is read from stdin when --password is not given.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return c.Store().Clear()
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Contraseña: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	sess, err := c.Login(cmd.Context(), loginEmail, password)
	if err != nil {
		return err
	}

	role := "usuario"
	switch {
	case sess.IsSuperAdmin():
		role = "superadministrador"
	case sess.IsAdmin():
		role = "administrador"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sesión iniciada como %s (%s)\n", loginEmail, role)
	return nil
}
