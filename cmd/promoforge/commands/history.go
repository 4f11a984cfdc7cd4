package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/history"
)

// NewHistoryCmd constructs the `promoforge history` command, which prints
// recent pipeline runs from the local history store.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		Long: `Print the most recent pipeline runs recorded by the server, newest first.

History is stored locally in SQLite (~/.promoforge/history.db by default;
override with PROMOFORGE_HISTORY_DB).

Examples:
  promoforge history
  promoforge history --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := os.Getenv("PROMOFORGE_HISTORY_DB")
			if dbPath == "disabled" {
				return fmt.Errorf("history: disabled via PROMOFORGE_HISTORY_DB=disabled")
			}
			if dbPath == "" {
				var err error
				dbPath, err = history.DefaultDBPath()
				if err != nil {
					return fmt.Errorf("history: %w", err)
				}
			}

			store, err := history.Open(dbPath)
			if err != nil {
				return fmt.Errorf("history: open %s: %w", dbPath, err)
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tOUTCOME\tDURATION\tHEADLINE\tDETAIL")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					run.CreatedAt.Local().Format(time.DateTime),
					run.Outcome,
					run.Duration.Round(time.Millisecond),
					run.Headline,
					run.Detail,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}
