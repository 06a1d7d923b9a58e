package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/balkashynov/sensorset/internal/db"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"ls"},
	Short:   "List cataloged sessions",
	Long:    "List the sessions recorded by previous builds, optionally for one label",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initCatalog(); err != nil {
			return err
		}

		label, _ := cmd.Flags().GetString("label")
		sessions, err := db.ListSessions(label)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions cataloged. Run 'sensorset build' to create datasets.")
			return nil
		}

		// Print table header
		fmt.Printf("%-8s %-20s %-7s %10s  %-14s %s\n", "LABEL", "START", "ID", "ROWS", "UPDATED", "FOLDER")
		fmt.Println(strings.Repeat("-", 90))

		for _, s := range sessions {
			fmt.Printf("%-8s %-20s %-7d %10s  %-14s %s\n",
				s.Label,
				s.StartDate,
				s.ExperimentID,
				humanize.Comma(int64(s.RowCount)),
				humanize.Time(s.UpdatedAt),
				s.Folder)
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().StringP("label", "l", "", "only show sessions of this label")
}
