package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/balkashynov/sensorset/internal/db"
	"github.com/balkashynov/sensorset/internal/ingest"
	"github.com/balkashynov/sensorset/internal/logging"
	"github.com/balkashynov/sensorset/internal/models"
	"github.com/balkashynov/sensorset/internal/random"
	"github.com/balkashynov/sensorset/internal/tui"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build one dataset per class label",
	Long: `Aggregate every session below <data-dir>/<label>/ into <output-dir>/<label>.csv,
one label after another. Shows live progress unless --no-ui is set or stdout is
not a terminal.`,
	Example: `  sensorset build
  sensorset build --labels walk,bike --workers 4
  sensorset build --seed 42 --no-ui  # Reproducible experiment ids`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// addBuildFlags registers the build flags on cmd. Used by build and root.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", "", "folder holding one subfolder per label (default data)")
	cmd.Flags().String("output-dir", "", "where <label>.csv files are written (default data)")
	cmd.Flags().StringSlice("labels", nil, "labels to build (default bike,car,walk,train)")
	addRunFlags(cmd)
	cmd.Flags().Bool("no-ui", false, "plain text output instead of the progress view")
}

// addRunFlags registers the flags shared by build and aggregate
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "sessions combined concurrently per class (default 1)")
	cmd.Flags().Uint64("seed", 0, "seed for experiment ids (default random)")
	cmd.Flags().Bool("no-catalog", false, "do not record sessions even if the catalog is enabled")
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("labels") {
		cfg.Labels, _ = flags.GetStringSlice("labels")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if noCatalog, _ := flags.GetBool("no-catalog"); noCatalog {
		cfg.Catalog.Enabled = false
	}
}

// idSource seeds the experiment id generator from --seed or crypto/rand
func idSource(cmd *cobra.Command) (ingest.IDSource, error) {
	seed, _ := cmd.Flags().GetUint64("seed")
	if !cmd.Flags().Changed("seed") {
		s, err := random.NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	logger.Debug("experiment id seed %d", seed)
	return random.New(seed), nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ids, err := idSource(cmd)
	if err != nil {
		return err
	}

	build := func(ctx context.Context, label string, log *logging.Logger) (tui.ClassSummary, error) {
		folder := filepath.Join(cfg.DataDir, label)
		return buildClass(ctx, label, folder, cfg.OutputDir, ids, log)
	}

	noUI, _ := cmd.Flags().GetBool("no-ui")
	if !noUI && isatty.IsTerminal(os.Stdout.Fd()) {
		_, err := tui.RunBuildTUI(cmd.Context(), cfg.Labels, logLevel(), build)
		return err
	}

	for _, label := range cfg.Labels {
		summary, err := build(cmd.Context(), label, logger)
		if err != nil {
			return err
		}
		printSummary(summary)
	}
	return nil
}

// buildClass aggregates one class folder and records its sessions
func buildClass(ctx context.Context, label, folder, outputDir string, ids ingest.IDSource, log *logging.Logger) (tui.ClassSummary, error) {
	res, err := ingest.AggregateClass(ctx, label, folder, ingest.Options{
		OutputDir: outputDir,
		IDs:       ids,
		Logger:    log,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return tui.ClassSummary{}, fmt.Errorf("%s: %w", label, err)
	}
	if res == nil {
		return tui.ClassSummary{Label: label, Skipped: true}, nil
	}

	// The CSV is already written; a catalog failure must not stop the build
	if cfg.Catalog.Enabled {
		if err := recordClass(res); err != nil {
			log.Warn("%s: catalog not updated: %v", label, err)
		} else {
			log.Debug("recorded %d sessions for %s in %s", len(res.Sessions), label, cfg.Catalog.Path)
		}
	}

	return tui.ClassSummary{
		Label:      label,
		Sessions:   len(res.Sessions),
		Rows:       res.Table.Len(),
		OutputPath: res.OutputPath,
	}, nil
}

// recordClass upserts every session of a written class into the catalog
func recordClass(res *ingest.ClassResult) error {
	if err := initCatalog(); err != nil {
		return err
	}

	rows := make([]models.CatalogSession, 0, len(res.Sessions))
	for _, s := range res.Sessions {
		folder, err := filepath.Abs(s.Folder)
		if err != nil {
			folder = s.Folder
		}
		rows = append(rows, models.CatalogSession{
			ID:           models.SessionKey(res.Label, folder),
			Label:        res.Label,
			Folder:       folder,
			StartDate:    s.StartDate,
			ExperimentID: s.ExperimentID,
			RowCount:     s.Table.Len(),
			SensorFiles:  strings.Join(s.SensorFiles, ","),
			OutputPath:   res.OutputPath,
		})
	}
	return db.RecordSessions(rows)
}

func printSummary(s tui.ClassSummary) {
	if s.Skipped {
		fmt.Printf("– %s: no sessions\n", s.Label)
		return
	}
	fmt.Printf("✓ %s: %d sessions, %s rows → %s\n", s.Label, s.Sessions, humanize.Comma(int64(s.Rows)), s.OutputPath)
}

func init() {
	addBuildFlags(buildCmd)
}
