package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"capacitaciones/config"
	"capacitaciones/database"
	"capacitaciones/server"
	"capacitaciones/utils"
)

var seedFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development backend",
	Long: `Starts the backend the client commands talk to: login, training CRUD,
collaborator sync, uploads and the collaborator CSV preview.

Uploaded files nobody references are swept on ORPHAN_SWEEP_SPEC.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&seedFile, "collaborators", "", "CSV roster of collaborators to load before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig
	if err := database.ConnectDb(cfg, log); err != nil {
		return err
	}
	db := database.Database.Db

	if seedFile != "" {
		n, err := seedCollaborators(seedFile)
		if err != nil {
			return fmt.Errorf("seed collaborators: %w", err)
		}
		log.Info("collaborators loaded", zap.String("file", seedFile), zap.Int("new", n))
	}

	sweeper, err := utils.StartOrphanSweeper(db, cfg.UploadDir, cfg.OrphanSweep, cfg.OrphanGrace, log)
	if err != nil {
		return fmt.Errorf("orphan sweeper: %w", err)
	}
	defer sweeper.Stop()

	app := server.NewApp(cfg, false)
	go func() {
		<-cmd.Context().Done()
		_ = app.Shutdown()
	}()

	log.Info("Server is running", zap.String("port", cfg.Port))
	return app.Listen(":" + cfg.Port)
}

func seedCollaborators(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := utils.ParseCollaborators(f)
	if err != nil {
		return 0, err
	}
	return database.SeedCollaborators(database.Database.Db, rows)
}
