package cli

import (
	"fmt"

	"github.com/artpar/almagro/internal/tui"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// Column widths for tabular output.
const (
	urlColumnWidth  = 48
	bodyColumnWidth = 32
)

// NewListCommand creates the list command.
func NewListCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, root)
		},
	}
}

func runList(cmd *cobra.Command, root *rootOptions) error {
	s, err := openSession(cmd, root)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.records.LoadAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load requests: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No stored requests.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for i, r := range records {
		status := r.LastStatus
		if status == "" {
			status = "-"
		}
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			r.Name,
			r.Method,
			tui.Truncate(r.URL, urlColumnWidth),
			status,
		})
	}

	fmt.Fprintln(out, renderTable([]string{"#", "NAME", "METHOD", "URL", "STATUS"}, rows))
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}
