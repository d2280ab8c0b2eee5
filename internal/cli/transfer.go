package cli

import (
	"fmt"
	"strings"

	"github.com/artpar/almagro/internal/exporter"
	"github.com/artpar/almagro/internal/importer"
	"github.com/spf13/cobra"
)

// ImportOptions holds options for the import command.
type ImportOptions struct {
	Name string
}

// NewImportCommand creates the import command.
func NewImportCommand(root *rootOptions) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import -- CURL_ARGS...",
		Short: "Store a request parsed from a curl command",
		Long: `Parse a curl command and append it to the stored requests.

Examples:
  almagro import -- https://httpbin.org/get
  almagro import -- -X POST https://httpbin.org/post -d '{"name": "test"}'
  almagro import "curl -X DELETE https://api.example.com/users/1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Name for the stored request (default: last URL path segment)")

	return cmd
}

// curlCommand rebuilds a curl command line from arguments the shell has
// already split.
func curlCommand(args []string) string {
	if len(args) == 1 && strings.HasPrefix(strings.TrimSpace(args[0]), "curl ") {
		return args[0]
	}
	if len(args) > 0 && args[0] == "curl" {
		args = args[1:]
	}

	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, "curl")
	for _, arg := range args {
		quoted = append(quoted, exporter.ShellQuote(arg))
	}
	return strings.Join(quoted, " ")
}

func runImport(cmd *cobra.Command, root *rootOptions, args []string, opts *ImportOptions) error {
	parsed, err := importer.ParseCurl(curlCommand(args))
	if err != nil {
		return fmt.Errorf("failed to parse curl command: %w", err)
	}

	r := parsed.Record
	if opts.Name != "" {
		r.Name = opts.Name
	}

	s, err := openSession(cmd, root)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.records.Create(cmd.Context(), r); err != nil {
		return fmt.Errorf("failed to store %q: %w", r.Name, err)
	}
	s.logger.Info("imported request", "name", r.Name, "method", r.Method, "url", r.URL)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Imported %q: %s %s\n", r.Name, r.Method, r.URL)
	for _, opt := range parsed.Ignored {
		fmt.Fprintf(w, "Ignored: %s\n", opt)
	}
	return nil
}

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Inline bool
}

// NewExportCommand creates the export command.
func NewExportCommand(root *rootOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Print a stored request as a curl command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, root)
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := findRecord(cmd.Context(), s.records, args[0])
			if err != nil {
				return err
			}

			out, err := (&exporter.CurlExporter{Pretty: !opts.Inline}).Export(r)
			if err != nil {
				return fmt.Errorf("failed to export %q: %w", r.Name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Inline, "inline", false, "Print the command on a single line")

	return cmd
}
