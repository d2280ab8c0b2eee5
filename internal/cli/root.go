package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/artpar/almagro/internal/app"
	"github.com/artpar/almagro/internal/event"
	"github.com/artpar/almagro/internal/tui/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath  string
	dataDir     string
	store       string
	timeout     time.Duration
	noRedirects bool
	logFile     string
	logLevel    string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, &rootOptions{})
}

func newRootCommand(version string, opts *rootOptions) *cobra.Command {
	defaults := app.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "almagro",
		Short:         "Almagro - a modal terminal client for stored HTTP requests",
		Long:          "Almagro keeps a list of HTTP requests, lets you edit them with vim-style keys and fires them from the terminal.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default <data-dir>/"+app.ConfigFileName+")")
	flags.StringVarP(&opts.dataDir, "data-dir", "d", defaults.DataDir, "Directory holding stored requests and logs")
	flags.StringVar(&opts.store, "store", defaults.Store, "Record store: sqlite or file")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "Request timeout (0 disables)")
	flags.BoolVar(&opts.noRedirects, "no-redirects", false, "Do not follow redirects")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file (default <data-dir>/almagro.log)")
	flags.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn or error")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSendCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// loadConfig builds the configuration from defaults, the config file and the
// flags the user set, in increasing order of precedence.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()
	if flagChanged(cmd, "data-dir") {
		cfg.DataDir = o.dataDir
	}

	path := o.configPath
	if path == "" {
		dir, err := cfg.ResolveDataDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, app.ConfigFileName)
	} else {
		expanded, err := app.ExpandHome(path)
		if err != nil {
			return cfg, err
		}
		path = expanded
	}

	cfg, err := app.LoadConfig(path, cfg)
	if err != nil {
		return cfg, err
	}

	if flagChanged(cmd, "data-dir") {
		cfg.DataDir = o.dataDir
	}
	if flagChanged(cmd, "store") {
		cfg.Store = o.store
	}
	if flagChanged(cmd, "timeout") {
		cfg.Timeout = o.timeout
	}
	if flagChanged(cmd, "no-redirects") {
		cfg.FollowRedirects = !o.noRedirects
	}
	if flagChanged(cmd, "log-file") {
		cfg.LogFile = o.logFile
	}
	if flagChanged(cmd, "log-level") {
		cfg.LogLevel = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// runTUI starts the interactive client
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	a := app.New(
		app.WithStore(s.records),
		app.WithRunner(s.runner),
		app.WithLogger(s.logger),
		app.WithNoticeDuration(s.cfg.NoticeDuration),
	)
	if err := a.Load(ctx); err != nil {
		return err
	}

	poller, err := event.OpenTerminal(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer poller.Close()

	source := event.NewSource(poller,
		event.WithTickInterval(s.cfg.TickInterval),
		event.WithLogger(s.logger),
	)
	defer source.Close()

	view := views.NewMainView(a, source,
		views.WithContext(ctx),
		views.WithLogger(s.logger),
	)

	// Input comes from the event source, so the program must not read
	// stdin or change the terminal mode itself.
	p := tea.NewProgram(view,
		tea.WithAltScreen(),
		tea.WithInput(nil),
		tea.WithoutBracketedPaste(),
		tea.WithContext(ctx),
	)

	s.logger.Info("session started", "records", len(a.Records()), "store", s.cfg.Store)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	s.logger.Info("session ended")

	return view.Err()
}
