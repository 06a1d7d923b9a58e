package commands

import (
	"github.com/spf13/cobra"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <label> <class-folder>",
	Short: "Aggregate every session of one class folder",
	Long: `Combine every session subfolder of <class-folder> and stack the results
into <output>/<label>.csv. Sessions are merged in folder name order.`,
	Example: `  sensorset aggregate walk recordings/walk -o out
  sensorset aggregate bike data/bike --workers 4 --seed 7`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd)
		outputDir, _ := cmd.Flags().GetString("output")
		if outputDir == "" {
			outputDir = cfg.OutputDir
		}

		ids, err := idSource(cmd)
		if err != nil {
			return err
		}

		summary, err := buildClass(cmd.Context(), args[0], args[1], outputDir, ids, logger)
		if err != nil {
			return err
		}
		printSummary(summary)
		return nil
	},
}

func init() {
	aggregateCmd.Flags().StringP("output", "o", "", "output directory (default data)")
	addRunFlags(aggregateCmd)
}
