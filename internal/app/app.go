// Package app implements the interaction state machine: the stored records,
// the selection, the mode and focus, and the edit buffers. It consumes
// events and calls out to the record store and the request runner.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/event"
	"github.com/artpar/almagro/internal/interfaces"
	"github.com/artpar/almagro/internal/runner"
	"github.com/artpar/almagro/internal/storage"
	"github.com/artpar/almagro/internal/tui/vim"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// Offset is the scroll position of the response view.
type Offset struct {
	Row int
	Col int
}

// Notice is a transient status message.
type Notice struct {
	Text    string
	IsError bool
}

// App is the interaction state machine.
type App struct {
	store     storage.RecordStore
	executor  Executor
	logger    *slog.Logger
	keys      *vim.KeyMap
	clipboard func(string) error
	now       func() time.Time
	noticeTTL time.Duration

	records  []*core.Record
	selected int
	state    vim.State
	field    core.Field
	offset   Offset
	running  bool
	fields   *FieldSet

	notice      Notice
	noticeUntil time.Time

	seq     uint64
	pending map[*core.Record]uint64
}

// Option is a function that configures the App.
type Option func(*App)

// New creates a new App with the given options.
func New(opts ...Option) *App {
	a := &App{
		logger:    slog.New(slog.DiscardHandler),
		keys:      vim.DefaultKeyMap(),
		clipboard: clipboard.WriteAll,
		now:       time.Now,
		noticeTTL: DefaultConfig().NoticeDuration,
		state:     vim.StateListNormal,
		running:   true,
		fields:    NewFieldSet(),
		pending:   make(map[*core.Record]uint64),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithStore sets the record store. Without one nothing is persisted.
func WithStore(store storage.RecordStore) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithRunner sets the request runner. Runners that do not record history
// themselves are wrapped in a runner.Runner.
func WithRunner(r interfaces.Runner) Option {
	return func(a *App) {
		if ex, ok := r.(Executor); ok {
			a.executor = ex
			return
		}
		a.executor = runner.NewRunner(r)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(km *vim.KeyMap) Option {
	return func(a *App) {
		a.keys = km
	}
}

// WithClipboard sets the function used to copy text.
func WithClipboard(write func(string) error) Option {
	return func(a *App) {
		a.clipboard = write
	}
}

// WithNoticeDuration sets how long notices stay visible.
func WithNoticeDuration(d time.Duration) Option {
	return func(a *App) {
		a.noticeTTL = d
	}
}

// WithClock sets the time source used to expire notices.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// Load replaces the in-memory records with the store contents and selects
// the first record.
func (a *App) Load(ctx context.Context) error {
	if a.store == nil {
		return nil
	}

	records, err := a.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load requests: %w", err)
	}

	a.records = records
	a.selected = 0
	a.refresh()
	a.logger.Info("requests loaded", "count", len(records))
	return nil
}

// Accessors for rendering

// Records returns the records in display order. The slice must not be
// modified.
func (a *App) Records() []*core.Record { return a.records }

// Selected returns the index of the selected record.
func (a *App) Selected() int { return a.selected }

// SelectedRecord returns the selected record, or nil when there are none.
func (a *App) SelectedRecord() *core.Record {
	if len(a.records) == 0 {
		return nil
	}
	return a.records[a.selected]
}

// State returns the combined mode and focus.
func (a *App) State() vim.State { return a.state }

// Mode returns the editing mode.
func (a *App) Mode() vim.Mode { return a.state.Mode() }

// Focus returns the focused panel.
func (a *App) Focus() vim.Focus { return a.state.Focus() }

// Field returns the highlighted field.
func (a *App) Field() core.Field { return a.field }

// Offset returns the response scroll offset.
func (a *App) Offset() Offset { return a.offset }

// Running reports whether the loop should continue.
func (a *App) Running() bool { return a.running }

// Fields returns the edit buffers.
func (a *App) Fields() *FieldSet { return a.fields }

// KeyMap returns the key bindings.
func (a *App) KeyMap() *vim.KeyMap { return a.keys }

// Notice returns the current notice, if any.
func (a *App) Notice() (Notice, bool) {
	return a.notice, a.notice.Text != ""
}

// InFlight reports whether a run for r has not completed yet.
func (a *App) InFlight(r *core.Record) bool {
	_, ok := a.pending[r]
	return ok
}

// Handle applies one event. A returned job must be executed and its
// completion passed to Complete. Errors are persistence failures; they are
// also shown as a notice and never undo the in-memory change.
func (a *App) Handle(ctx context.Context, e event.Event) (*RunJob, error) {
	if e.IsTick() {
		a.tick()
		return nil, nil
	}

	cmd := a.keys.Lookup(a.state, e.Key)
	if a.state.IsInsert() {
		return nil, a.handleInsert(ctx, cmd, e.Key)
	}
	return a.handleNormal(ctx, cmd)
}

func (a *App) tick() {
	if a.notice.Text != "" && !a.now().Before(a.noticeUntil) {
		a.notice = Notice{}
	}
}

func (a *App) handleNormal(ctx context.Context, cmd vim.Command) (*RunJob, error) {
	switch cmd {
	case vim.CmdQuit:
		a.running = false
	case vim.CmdNext:
		a.next()
	case vim.CmdPrev:
		a.prev()
	case vim.CmdMoveDown:
		a.moveDown()
	case vim.CmdMoveUp:
		a.moveUp()
	case vim.CmdScrollDown:
		a.offset.Row++
	case vim.CmdScrollUp:
		if a.offset.Row > 0 {
			a.offset.Row--
		}
	case vim.CmdScrollLeft:
		if a.offset.Col > 0 {
			a.offset.Col--
		}
	case vim.CmdScrollRight:
		a.offset.Col++
	case vim.CmdToggleFocus:
		a.toggleFocus()
	case vim.CmdInsert:
		a.state = a.state.Insert()
		a.fields.Focus(a.field)
	case vim.CmdRun:
		return a.run(), nil
	case vim.CmdNew:
		return nil, a.create(ctx)
	case vim.CmdDelete:
		return nil, a.delete(ctx)
	case vim.CmdYank:
		a.yank()
	}
	return nil, nil
}

func (a *App) handleInsert(ctx context.Context, cmd vim.Command, msg tea.KeyMsg) error {
	switch cmd {
	case vim.CmdQuit:
		a.running = false
	case vim.CmdCancel:
		a.fields.Load(a.SelectedRecord())
		a.leaveInsert()
	case vim.CmdCommit:
		return a.commit(ctx)
	default:
		a.fields.Update(a.field, msg)
	}
	return nil
}

func (a *App) leaveInsert() {
	a.fields.Blur()
	a.state = a.state.Normal()
}

// refresh loads the selected record into the edit buffers.
func (a *App) refresh() {
	a.fields.Load(a.SelectedRecord())
}

func (a *App) resetOffset() {
	a.offset = Offset{}
}

func (a *App) next() {
	if a.state.Focus() == vim.FocusPanel {
		a.field = a.field.Next()
		a.resetOffset()
		return
	}
	if len(a.records) == 0 {
		return
	}
	a.selected = (a.selected + 1) % len(a.records)
	a.refresh()
}

func (a *App) prev() {
	if a.state.Focus() == vim.FocusPanel {
		a.field = a.field.Prev()
		a.resetOffset()
		return
	}
	if len(a.records) == 0 {
		return
	}
	a.selected = (a.selected - 1 + len(a.records)) % len(a.records)
	a.refresh()
}

func (a *App) moveDown() {
	if a.selected >= len(a.records)-1 {
		return
	}
	a.records[a.selected], a.records[a.selected+1] = a.records[a.selected+1], a.records[a.selected]
	a.selected++
}

func (a *App) moveUp() {
	if a.selected <= 0 || len(a.records) == 0 {
		return
	}
	a.records[a.selected], a.records[a.selected-1] = a.records[a.selected-1], a.records[a.selected]
	a.selected--
}

func (a *App) toggleFocus() {
	a.state = a.state.ToggleFocus()
	if a.state.Focus() == vim.FocusList {
		a.field = core.FieldName
		a.resetOffset()
	}
}

func (a *App) run() *RunJob {
	r := a.SelectedRecord()
	if r == nil {
		return nil
	}
	if a.executor == nil {
		a.notify("no request runner configured", true)
		return nil
	}

	a.seq++
	a.pending[r] = a.seq
	a.logger.Debug("run started", "record", r.Name, "seq", a.seq)

	return &RunJob{
		record: r,
		seq:    a.seq,
		run: runner.Run{
			Name:   r.Name,
			Method: r.Method,
			URL:    r.URL,
			Body:   r.Body,
		},
		executor: a.executor,
	}
}

// Complete stores the outcome of a job. Only the most recently started run
// of a record is applied; completions of older runs and of deleted records
// are discarded and false is returned.
func (a *App) Complete(ctx context.Context, c Completion) bool {
	if c.job == nil {
		return false
	}

	r := c.job.record
	if seq, ok := a.pending[r]; !ok || seq != c.job.seq {
		a.logger.Debug("stale run discarded", "record", r.Name, "seq", c.job.seq)
		return false
	}
	delete(a.pending, r)

	if c.Err != nil {
		r.SetFailure(c.Err)
	} else {
		r.SetResult(c.Result)
	}

	if err := a.save(ctx, r); err != nil {
		a.fail(err)
	}
	return true
}

func (a *App) create(ctx context.Context) error {
	r := core.NewRecord(core.DefaultName(len(a.records) + 1))
	a.records = append(a.records, r)
	a.selected = len(a.records) - 1
	a.refresh()
	a.logger.Info("request created", "record", r.Name)

	if err := a.save(ctx, r); err != nil {
		return a.fail(err)
	}
	return nil
}

func (a *App) delete(ctx context.Context) error {
	r := a.SelectedRecord()
	if r == nil {
		return nil
	}

	if r.Persisted() && a.store != nil {
		if err := a.store.Delete(ctx, r.StorageID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return a.fail(fmt.Errorf("failed to delete %q: %w", r.Name, err))
		}
	}

	a.records = append(a.records[:a.selected], a.records[a.selected+1:]...)
	delete(a.pending, r)
	if a.selected > 0 {
		a.selected--
	}
	a.refresh()
	a.logger.Info("request deleted", "record", r.Name)
	return nil
}

func (a *App) commit(ctx context.Context) error {
	r := a.SelectedRecord()
	if r == nil {
		return nil
	}

	if err := r.Apply(a.field, a.fields.Value(a.field)); err != nil {
		a.logger.Debug("edit rejected", "record", r.Name, "field", a.field.Title(), "error", err)
		a.fields.Reset(a.field, r)
		a.leaveInsert()
		return nil
	}

	a.fields.Reset(a.field, r)
	a.leaveInsert()

	if err := a.save(ctx, r); err != nil {
		return a.fail(err)
	}
	return nil
}

func (a *App) yank() {
	r := a.SelectedRecord()
	if r == nil {
		return
	}
	if err := a.clipboard(r.LastResponse); err != nil {
		a.fail(fmt.Errorf("failed to copy response: %w", err))
		return
	}
	a.notify("response copied", false)
}

// save creates the record in the store on first use and updates it
// afterwards. A failed create leaves the record without an id so the next
// save tries again.
func (a *App) save(ctx context.Context, r *core.Record) error {
	if a.store == nil {
		return nil
	}

	if !r.Persisted() {
		id, err := a.store.Create(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to save %q: %w", r.Name, err)
		}
		r.StorageID = id
		return nil
	}

	if err := a.store.Update(ctx, r.StorageID, r); err != nil {
		return fmt.Errorf("failed to save %q: %w", r.Name, err)
	}
	return nil
}

func (a *App) notify(text string, isError bool) {
	a.notice = Notice{Text: text, IsError: isError}
	a.noticeUntil = a.now().Add(a.noticeTTL)
}

func (a *App) fail(err error) error {
	a.logger.Error("operation failed", "error", err)
	a.notify(err.Error(), true)
	return err
}
