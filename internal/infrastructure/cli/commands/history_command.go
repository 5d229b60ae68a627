package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/installez/internal/app"
	"github.com/doeshing/installez/internal/domain"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past install batches",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryClearCommand(container),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(container *app.Container) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return fmt.Errorf(ErrHistoryDisabled)
			}
			records, err := container.HistoryStore.Batches(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to retrieve history: %w", err)
			}
			if asJSON {
				return writeHistoryJSON(cmd.OutOrStdout(), records)
			}
			listHistoryEntries(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max batches to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print batches as JSON")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return fmt.Errorf(ErrHistoryDisabled)
			}
			if err := container.HistoryStore.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
			return nil
		},
	}
}

// listHistoryEntries prints one header line per batch and one line per app
func listHistoryEntries(out io.Writer, records []domain.BatchRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%s | %s | %d apps\n", rec.StartedAt.Local().Format(TimestampFormat), rec.ID, len(rec.Apps))
		for _, a := range rec.Apps {
			fmt.Fprintf(out, "  %-40s %-18s attempts=%d exit=%d\n", a.App, a.Outcome, a.Attempts, a.ExitCode)
		}
	}
}

func writeHistoryJSON(out io.Writer, records []domain.BatchRecord) error {
	if records == nil {
		records = []domain.BatchRecord{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
