package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/balkashynov/sensorset/internal/ingest"
)

var combineCmd = &cobra.Command{
	Use:   "combine <label> <session-folder>",
	Short: "Combine the sensor files of one session",
	Long: `Merge the sensor CSVs of a single session folder into one table with
absolute timestamps, written to <output>/<label> <start date>.csv.`,
	Example: `  sensorset combine walk "data/walk/2023-05-12 12-33-21" -o out`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, _ := cmd.Flags().GetString("output")
		if outputDir == "" {
			outputDir = cfg.OutputDir
		}

		ids, err := idSource(cmd)
		if err != nil {
			return err
		}

		res, err := ingest.CombineSession(cmd.Context(), args[0], args[1], ingest.Options{
			OutputDir: outputDir,
			IDs:       ids,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ %s: %d sensor files, %s rows → %s\n",
			res.Label, len(res.SensorFiles), humanize.Comma(int64(res.Table.Len())), res.OutputPath)
		return nil
	},
}

func init() {
	combineCmd.Flags().StringP("output", "o", "", "output directory (default data)")
	combineCmd.Flags().Uint64("seed", 0, "seed for the experiment id (default random)")
}
