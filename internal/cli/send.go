package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/format"
	"github.com/artpar/almagro/internal/runner"
	"github.com/artpar/almagro/internal/storage"
	"github.com/spf13/cobra"
)

// SendOptions holds options for the send command.
type SendOptions struct {
	JSON   bool
	NoSave bool
	Pretty bool
}

// sendOutput is the JSON form of a send result.
type sendOutput struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	URL    string `json:"url"`
	Status string `json:"status"`
	Body   string `json:"body"`
	Failed bool   `json:"failed"`
}

// NewSendCommand creates the send command.
func NewSendCommand(root *rootOptions) *cobra.Command {
	opts := &SendOptions{}

	cmd := &cobra.Command{
		Use:   "send NAME",
		Short: "Run a stored request",
		Long:  "Run the stored request with the given name, print the status and body and store the result with the request.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, root, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "Do not store the result with the request")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "Re-indent JSON and XML response bodies")

	return cmd
}

func runSend(cmd *cobra.Command, root *rootOptions, name string, opts *SendOptions) error {
	s, err := openSession(cmd, root)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	r, err := findRecord(ctx, s.records, name)
	if err != nil {
		return err
	}

	res, runErr := s.runner.Execute(ctx, runner.Run{
		Name:   r.Name,
		Method: r.Method,
		URL:    r.URL,
		Body:   r.Body,
	})
	if runErr != nil {
		r.SetFailure(runErr)
	} else {
		r.SetResult(res)
	}

	if !opts.NoSave {
		if err := s.records.Update(ctx, r.StorageID, r); err != nil {
			return fmt.Errorf("failed to save %q: %w", r.Name, err)
		}
	}

	if err := printSendResult(cmd.OutOrStdout(), r, runErr != nil, opts); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("request %q failed: %w", r.Name, runErr)
	}
	return nil
}

// findRecord returns the first stored record named name.
func findRecord(ctx context.Context, store storage.RecordStore, name string) (*core.Record, error) {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	for _, r := range records {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: no request named %q", storage.ErrNotFound, name)
}

func printSendResult(w io.Writer, r *core.Record, failed bool, opts *SendOptions) error {
	body := r.LastResponse
	if opts.Pretty && !failed {
		body = format.Pretty(body)
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sendOutput{
			Name:   r.Name,
			Method: r.Method,
			URL:    r.URL,
			Status: r.LastStatus,
			Body:   body,
			Failed: failed,
		})
	}

	fmt.Fprintf(w, "%s %s\n", r.Method, r.URL)
	fmt.Fprintf(w, "Status: %s\n", r.LastStatus)
	if body != "" {
		fmt.Fprintf(w, "\n%s\n", body)
	}
	return nil
}
