package cli

import (
	"fmt"
	"time"

	"github.com/artpar/almagro/internal/history"
	"github.com/artpar/almagro/internal/tui"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int
	Name   string
	Failed bool
	Clear  bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(root *rootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent request runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, root, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Only show runs of the named request")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "Only show failed runs")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "Delete all recorded runs")

	return cmd
}

func runHistory(cmd *cobra.Command, root *rootOptions, opts *HistoryOptions) error {
	s, err := openSession(cmd, root)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if opts.Clear {
		if err := s.history.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	query := history.QueryOptions{
		RequestName: opts.Name,
		Limit:       opts.Limit,
	}
	if opts.Failed {
		failed := true
		query.Failed = &failed
	}

	entries, err := s.history.List(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Local().Format(time.DateTime),
			e.RequestName,
			e.RequestMethod,
			tui.Truncate(e.RequestURL, urlColumnWidth),
			e.ResponseStatus,
			fmt.Sprintf("%dms", e.ResponseTime),
			tui.Truncate(firstLine(e.ResponseBody), bodyColumnWidth),
		})
	}

	fmt.Fprintln(out, renderTable([]string{"TIME", "NAME", "METHOD", "URL", "STATUS", "DURATION", "RESPONSE"}, rows))
	return nil
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' || c == '\r' {
			return s[:i]
		}
	}
	return s
}
