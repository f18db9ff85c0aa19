package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/8ryn/tomoscan/internal/history"
)

// NewHistoryCmd creates the 'history' command for listing recent invocations
// Flags: --limit (int, newest-first cap)
func NewHistoryCmd(a *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent tomoscan invocations",
		Long: `Show the local invocation ledger: recent builds, display
launches, verifications, and exports, newest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.RunHistory(cmd.OutOrStdout(), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show (0 for all)")

	return cmd
}

// RunHistory renders the invocation ledger to stdout.
func (a *App) RunHistory(stdout io.Writer, limit int) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Disabled {
		return fmt.Errorf("history is disabled in config")
	}

	path := cfg.History.Path
	if path == "" {
		path, err = history.DefaultPath()
		if err != nil {
			return err
		}
	}

	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history at %s: %w", path, err)
	}
	defer store.Close()

	records, err := store.List(limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(stdout, "No invocations recorded yet.")
		return nil
	}

	displayHistory(stdout, records)
	return nil
}

// displayHistory renders ledger records in tabular format using tabwriter.
// Columns: When, Kind, Subject, Runtime, Status, Duration, Detail
func displayHistory(stdout io.Writer, records []history.Record) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	// Print header row
	fmt.Fprintln(w, "WHEN\tKIND\tSUBJECT\tRUNTIME\tSTATUS\tDURATION\tDETAIL")

	// Print each record
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(r.CreatedAt),
			r.Kind,
			r.Subject,
			orDash(r.Runtime),
			r.Status,
			r.Duration.Round(time.Millisecond),
			trimDetail(r.Detail),
		)
	}
}

// orDash substitutes "-" for empty column values.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// trimDetail keeps the detail column to one readable line.
func trimDetail(s string) string {
	const max = 72
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
