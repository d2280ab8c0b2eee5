package exporter

import (
	"net/http"
	"strings"

	"github.com/artpar/almagro/internal/core"
)

// CurlExporter renders records as curl commands.
type CurlExporter struct {
	Pretty bool // one option per line, joined with continuations
}

// NewCurlExporter creates an exporter producing pretty output.
func NewCurlExporter() *CurlExporter {
	return &CurlExporter{Pretty: true}
}

// Export renders r. The method is omitted for GET and the URL is always last.
func (c *CurlExporter) Export(r *core.Record) (string, error) {
	if r == nil || r.URL == "" {
		return "", ErrInvalidRecord
	}

	var options [][2]string
	if r.Method != "" && r.Method != http.MethodGet {
		options = append(options, [2]string{"-X", r.Method})
	}
	if r.Body != "" {
		options = append(options, [2]string{"--data-raw", r.Body})
	}

	if c.Pretty {
		return formatPretty(options, r.URL), nil
	}
	return formatInline(options, r.URL), nil
}

func formatInline(options [][2]string, url string) string {
	var sb strings.Builder
	sb.WriteString("curl")
	for _, opt := range options {
		sb.WriteString(" " + opt[0] + " " + ShellQuote(opt[1]))
	}
	sb.WriteString(" " + ShellQuote(url))
	return sb.String()
}

func formatPretty(options [][2]string, url string) string {
	if len(options) == 0 {
		return "curl " + ShellQuote(url)
	}

	var sb strings.Builder
	sb.WriteString("curl")
	for _, opt := range options {
		sb.WriteString(" \\\n  " + opt[0] + " " + ShellQuote(opt[1]))
	}
	sb.WriteString(" \\\n  " + ShellQuote(url))
	return sb.String()
}

// ShellQuote wraps s in single quotes when it holds characters the shell
// would interpret.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\r\n\"'$`\\!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
