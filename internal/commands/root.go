package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/sensorset/internal/config"
	"github.com/balkashynov/sensorset/internal/db"
	"github.com/balkashynov/sensorset/internal/logging"
	"github.com/balkashynov/sensorset/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Shared state set up by PersistentPreRunE
var (
	cfg      config.Config
	logger   *logging.Logger
	shutdown = func(context.Context) error { return nil }
)

var (
	configPath  string
	catalogPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "sensorset",
	Short: "Build labeled datasets from phone sensor sessions",
	Long: `sensorset merges phyphox sensor exports into labeled CSV datasets.
Each session folder is combined into one table with absolute timestamps,
and every session of a class is stacked into <output-dir>/<label>.csv.

Running sensorset without a subcommand is the same as 'sensorset build'.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runBuild,
}

// setup loads configuration and prepares logging and tracing
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	if cmd.Flags().Changed("catalog") {
		cfg.Catalog.Enabled = true
		cfg.Catalog.Path = catalogPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = logging.New(os.Stderr, level)

	stop, err := telemetry.Setup(cmd.Context(), telemetry.Options{
		Endpoint: cfg.OTelEndpoint,
		Version:  version,
	})
	if err != nil {
		logger.Warn("tracing disabled: %v", err)
		return nil
	}
	shutdown = stop
	return nil
}

// logLevel returns the configured level, defaulting to info
func logLevel() logging.Level {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// initCatalog opens the catalog database at the configured path
func initCatalog() error {
	if err := db.Initialize(cfg.Catalog.Path); err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	return nil
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if shutdownErr := shutdown(context.Background()); shutdownErr != nil && logger != nil {
		logger.Warn("flush traces: %v", shutdownErr)
	}
	if closeErr := db.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "record sessions in this catalog database (sessions reads ~/.sensorset/catalog.db by default)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addBuildFlags(rootCmd)

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(versionCmd)
}
