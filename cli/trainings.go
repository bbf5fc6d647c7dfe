package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"capacitaciones/api"
	"capacitaciones/draft"
)

var dryRun bool

var pushCmd = &cobra.Command{
	Use:   "push [manifest.yaml]",
	Short: "Create or update a training from a YAML manifest",
	Long: `Builds a draft from the manifest, validates it, uploads its files and
persists it. A manifest with an "id" edits that training: collaborators
are synced first, then the document is patched.`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [id]",
	Short: "Print a training as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List trainings",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a training",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var collaboratorsCmd = &cobra.Command{
	Use:   "collaborators",
	Short: "Collaborator roster commands",
}

var collaboratorsUploadCmd = &cobra.Command{
	Use:   "upload [file.csv]",
	Short: "Match a CSV of cedulas against the collaborator roster",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollaboratorsUpload,
}

func init() {
	pushCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the manifest without contacting the backend")
	collaboratorsCmd.AddCommand(collaboratorsUploadCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	m, err := LoadManifest(args[0])
	if err != nil {
		return err
	}

	var (
		b      *draft.Builder
		client *api.Client
	)
	switch {
	case dryRun:
		b = draft.New(nil, log)
	case m.ID > 0:
		if client, err = adminClient(); err != nil {
			return err
		}
		if b, err = draft.Load(cmd.Context(), client, m.ID, log); err != nil {
			return err
		}
	default:
		if client, err = adminClient(); err != nil {
			return err
		}
		b = draft.New(client, log)
	}

	if err := m.Apply(b); err != nil {
		return err
	}
	if dryRun {
		if err := b.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Manifiesto válido")
		return nil
	}

	res, err := b.Submit(cmd.Context())
	if err != nil {
		return explainSubmit(err)
	}
	return printSubmit(cmd.OutOrStdout(), res)
}

func explainSubmit(err error) error {
	var perr *draft.PersistError
	if errors.As(err, &perr) && perr.Stage == draft.StagePatch {
		return fmt.Errorf("%w (los colaboradores ya quedaron sincronizados; reintente)", err)
	}
	return err
}

func printSubmit(w io.Writer, res *draft.SubmitResult) error {
	verb := "actualizada"
	if res.Created {
		verb = "creada"
	}
	fmt.Fprintf(w, "Capacitación %d %s (%d archivo(s) subido(s))\n", res.ID, verb, res.Uploaded)
	if len(res.Added) > 0 || len(res.Removed) > 0 {
		fmt.Fprintf(w, "Colaboradores: +%v -%v\n", res.Added, res.Removed)
	}
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido %q", s)
	}
	return id, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := adminClient()
	if err != nil {
		return err
	}
	b, err := draft.Load(cmd.Context(), client, id, log)
	if err != nil {
		return err
	}
	return encodeManifest(cmd.OutOrStdout(), ManifestFromTraining(b.Training()))
}

func encodeManifest(w io.Writer, m *Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := adminClient()
	if err != nil {
		return err
	}
	rows, err := client.ListTrainings(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTÍTULO\tTIPO\tINICIO\tFIN")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Type, day(r.StartDate), day(r.EndDate))
	}
	return tw.Flush()
}

func day(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := adminClient()
	if err != nil {
		return err
	}
	if err := client.DeleteTraining(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Capacitación %d eliminada\n", id)
	return nil
}

func runCollaboratorsUpload(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	client, err := adminClient()
	if err != nil {
		return err
	}
	res, err := client.UploadCollaboratorCSV(cmd.Context(), filepath.Base(args[0]), data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCÉDULA\tNOMBRE")
	for _, c := range res.Found {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\n", c.ID, c.Cedula, c.FirstName, c.LastName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(res.NotFound) > 0 {
		fmt.Fprintf(out, "No encontrados: %v\n", res.NotFound)
	}
	return nil
}
