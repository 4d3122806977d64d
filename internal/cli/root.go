package cli

import (
	"fmt"
	"strings"

	"driver_dashboard/internal/config"
	"driver_dashboard/internal/logger"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the state every command shares.
type RootOptions struct {
	LogLevel string
	Storage  string

	Config config.Config
	Log    logger.ILogger
}

// NewRootCommand creates the root command. Without a subcommand it serves HTTP.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "driver-dashboard",
		Short: "Driver dashboard server and admin tools",
		Long:  "Internal admin tool for managing drivers: REST API, login-gated dashboard and maintenance commands.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, 0)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOGGER_LEVEL (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "override STORAGE_DRIVER (file|sqlite|postgres)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCreateUserCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

func (o *RootOptions) load() error {
	cfg := config.Load()
	if o.LogLevel != "" {
		cfg.LoggerLevel = o.LogLevel
	}
	if o.Storage != "" {
		cfg.StorageDriver = strings.ToLower(o.Storage)
	}
	switch cfg.StorageDriver {
	case config.StorageFile, config.StorageSQLite, config.StoragePostgres:
	default:
		return fmt.Errorf("invalid storage %q: must be one of file, sqlite, postgres", cfg.StorageDriver)
	}

	o.Config = cfg
	o.Log = logger.New(cfg.ServiceName, cfg.LoggerLevel)
	return nil
}
