package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/heartrisk/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect stored predictions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent predictions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.EventRepo().QueryPredictions(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query predictions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No predictions found.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-5s  %-19s  %-9s  %-5s  %-19s  %s\n",
			"Seq", "Timestamp", "Risk", "Label", "Model", "ID")
		fmt.Fprintln(out, strings.Repeat("─", 100))

		for _, r := range records {
			fmt.Fprintf(out, "%-5d  %-19s  %-9s  %-5d  %-19s  %s\n",
				r.Sequence, r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Risk, r.Label, r.ModelKind, r.ID)
		}

		fmt.Fprintf(out, "\n%d predictions\n", len(records))
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "Maximum number of predictions to show")

	historyCmd.AddCommand(historyListCmd)
}
