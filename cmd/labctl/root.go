package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"vetlab/internal/auth"
	"vetlab/internal/config"
	"vetlab/internal/model"
	"vetlab/internal/repository"
	"vetlab/internal/storage"

	"github.com/spf13/cobra"
)

// app is what every subcommand works against once the root has loaded the
// configuration and opened storage.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	port    storage.Port
	lab     *repository.LabRepository
	vet     *repository.VetRepository
	table   *auth.Table
	session *auth.Session
}

// document is the maintenance surface shared by both domain repositories.
type document interface {
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
}

func (a *app) document(domain string) (document, error) {
	switch model.Domain(domain) {
	case model.DomainLab:
		return a.lab, nil
	case model.DomainVet:
		return a.vet, nil
	}
	return nil, fmt.Errorf("unknown domain %q (want lab or vet)", domain)
}

type rootFlags struct {
	envFile string
	driver  string
	dataDir string
	quiet   bool
}

func getRootCmd() *cobra.Command {
	var flags rootFlags
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "labctl",
		Short: "labctl maintains the laboratory and quarantine documents",
		Long: `labctl works directly against the configured storage driver, the same one
the API server uses. It reads configs/.env and the process environment.

Commands:
  - next-number: Show the next procedure number of a domain
  - seed-admin: Create the program manager account
  - login / logout / whoami: Manage the operator session
  - export / import: Copy a whole domain document (needs export_data)
  - stats: Record counts and document sizes
  - permissions: Print the role permission table`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.envFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if flags.driver != "" {
				cfg.Storage.Driver = storage.Driver(flags.driver)
			}
			if flags.dataDir != "" {
				cfg.Storage.DataDir = flags.dataDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := cfg.NewLogger()
			if flags.quiet {
				logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			}
			port, err := storage.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}

			a.cfg, a.logger, a.port = cfg, logger, port
			a.lab = repository.NewLabRepository(port, repository.WithLogger(logger))
			a.vet = repository.NewVetRepository(port, repository.WithLogger(logger))
			repository.LinkUsers(a.lab, a.vet)
			a.table = auth.Default()
			a.session = auth.NewSession(auth.NewDirectory(a.lab, a.vet, logger), a.table, port, logger)
			return a.session.Restore(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env", config.DefaultEnvFile, "env file to load before the environment")
	rootCmd.PersistentFlags().StringVar(&flags.driver, "driver", "", "storage driver override (memory|file|sqlite|postgres|s3)")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory override for the file and sqlite drivers")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "discard log output")

	rootCmd.AddCommand(
		getNextNumberCmd(a),
		getSeedAdminCmd(a),
		getLoginCmd(a),
		getLogoutCmd(a),
		getWhoamiCmd(a),
		getExportCmd(a),
		getImportCmd(a),
		getStatsCmd(a),
		getPermissionsCmd(a),
	)
	return rootCmd
}
