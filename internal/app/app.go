// Package app wires the calculator engine to its supporting components:
// logging, metrics, the event bus, the journal and the console.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/undocalc/internal/config"
	"github.com/dshills/undocalc/internal/engine"
	"github.com/dshills/undocalc/internal/engine/accumulator"
	"github.com/dshills/undocalc/internal/engine/history"
	"github.com/dshills/undocalc/internal/event"
	"github.com/dshills/undocalc/internal/event/topic"
	"github.com/dshills/undocalc/internal/journal"
)

// Application owns one calculator session.
// All mutating calls are serialized, so the HTTP surface and scripts can share it.
type Application struct {
	mu sync.Mutex

	cfg     *config.Config
	logger  *zap.Logger
	engine  *engine.Engine
	bus     *event.Bus
	metrics *Metrics
	journal journal.Store
	console *ConsolePrinter

	closed atomic.Bool
}

// Options configures the application.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config

	// Logger defaults to one built from Config.Logging on stderr.
	Logger *zap.Logger

	// Output receives calculator output. Defaults to stdout.
	Output io.Writer

	// Journal overrides the store selected by Config.Journal.
	Journal journal.Store
}

// State is a point-in-time view of the session.
type State struct {
	Value    int64  `json:"value"`
	Cursor   int    `json:"cursor"`
	Len      int    `json:"len"`
	CanUndo  bool   `json:"can_undo"`
	CanRedo  bool   `json:"can_redo"`
	Boundary string `json:"redo_boundary"`
}

// New creates an Application.
func New(opts Options) (*Application, error) {
	app := &Application{cfg: opts.Config}
	if app.cfg == nil {
		app.cfg = config.Default()
	}

	if err := app.bootstrap(opts); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap(opts Options) error {
	// 1. Logging
	app.logger = opts.Logger
	if app.logger == nil {
		logger, err := NewLogger(app.cfg.Logging, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInitialization, NewComponentError("logger", "create", err))
		}
		app.logger = logger
	}

	// 2. Engine
	boundary, ok := history.ParseRedoBoundary(app.cfg.History.RedoBoundary)
	if !ok {
		err := fmt.Errorf("unknown policy %q", app.cfg.History.RedoBoundary)
		return fmt.Errorf("%w: %w", ErrInitialization, NewComponentError("engine", "redo boundary", err))
	}
	app.engine = engine.New(
		engine.WithMaxUndoEntries(app.cfg.History.MaxEntries),
		engine.WithRedoBoundary(boundary),
	)

	// 3. Metrics and event bus
	app.metrics = NewMetrics()
	app.bus = event.NewBus()

	// 4. Journal
	app.journal = opts.Journal
	if app.journal == nil {
		app.journal = openJournal(app.cfg.Journal, app.logger)
	}

	// 5. Observers
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	app.console = NewConsolePrinter(out)
	app.engine.Attach(app.console)
	app.engine.Attach(metricsObserver{m: app.metrics})
	app.engine.Attach(busBridge{bus: app.bus, logger: app.logger.Named("events")})

	app.logger.Debug("application initialized",
		zap.Int("max_entries", app.cfg.History.MaxEntries),
		zap.Stringer("redo_boundary", boundary),
		zap.Bool("redis_journal", app.cfg.Journal.RedisAddr != "" && opts.Journal == nil),
	)
	return nil
}

func openJournal(cfg config.JournalConfig, logger *zap.Logger) journal.Store {
	if cfg.RedisAddr == "" {
		return journal.NewMemoryStore()
	}

	client := journal.NewGoRedisList(cfg.RedisAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// The client reconnects on demand, so an unreachable server only warns.
	if err := client.Ping(ctx); err != nil {
		logger.Warn("redis journal unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return journal.NewRedisStore(client, cfg.Key)
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config { return app.cfg }

// Logger returns the application logger.
func (app *Application) Logger() *zap.Logger { return app.logger }

// Engine returns the calculator engine.
func (app *Application) Engine() *engine.Engine { return app.engine }

// Bus returns the event bus.
func (app *Application) Bus() *event.Bus { return app.bus }

// Metrics returns the Prometheus collectors.
func (app *Application) Metrics() *Metrics { return app.metrics }

// Journal returns the journal store.
func (app *Application) Journal() journal.Store { return app.journal }

// Value returns the accumulator value.
func (app *Application) Value() int64 { return app.engine.Value() }

// Cursor returns the history cursor.
func (app *Application) Cursor() int { return app.engine.Cursor() }

// Entries returns the command log.
func (app *Application) Entries() []engine.OperationInfo { return app.engine.Entries() }

// State returns a snapshot of the session.
func (app *Application) State() State {
	return State{
		Value:    app.engine.Value(),
		Cursor:   app.engine.Cursor(),
		Len:      app.engine.Len(),
		CanUndo:  app.engine.CanUndo(),
		CanRedo:  app.engine.CanRedo(),
		Boundary: app.engine.History().Boundary().String(),
	}
}

// Compute applies op and operand and records it in history and the journal.
func (app *Application) Compute(ctx context.Context, op accumulator.Operator, operand int64) error {
	if app.closed.Load() {
		return ErrClosed
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	start := time.Now()
	err := app.engine.Compute(op, operand)
	app.metrics.ObserveCommand("compute", time.Since(start), err)
	if err != nil {
		app.logger.Warn("compute failed",
			zap.Stringer("op", op),
			zap.Int64("operand", operand),
			zap.Error(err))
		return NewOperationError("compute", fmt.Sprintf("%s %d", op, operand), err)
	}

	app.logger.Debug("computed",
		zap.Stringer("op", op),
		zap.Int64("operand", operand),
		zap.Int64("value", app.engine.Value()))

	app.record(ctx, journal.ComputeRecord(op, operand))
	app.publish(ctx, event.TopicHistoryComputed, 1, 1)
	return nil
}

// ComputeSymbol parses symbol and computes with it.
func (app *Application) ComputeSymbol(ctx context.Context, symbol string, operand int64) error {
	op, err := accumulator.ParseOperator(symbol)
	if err != nil {
		return NewOperationError("compute", fmt.Sprintf("%s %d", symbol, operand), err)
	}
	return app.Compute(ctx, op, operand)
}

// Undo undoes up to levels steps and returns how many were undone.
func (app *Application) Undo(ctx context.Context, levels int) (int, error) {
	return app.step(ctx, "undo", levels)
}

// Redo redoes up to levels steps and returns how many were redone.
func (app *Application) Redo(ctx context.Context, levels int) (int, error) {
	return app.step(ctx, "redo", levels)
}

func (app *Application) step(ctx context.Context, kind string, levels int) (int, error) {
	if app.closed.Load() {
		return 0, ErrClosed
	}
	if levels < 0 {
		return 0, NewOperationError(kind, fmt.Sprintf("%d levels", levels), ErrInvalidLevels)
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	run, rec, t, header := app.engine.Undo, journal.UndoRecord(levels), event.TopicHistoryUndone, "Undo"
	if kind == "redo" {
		run, rec, t, header = app.engine.Redo, journal.RedoRecord(levels), event.TopicHistoryRedone, "Redo"
	}

	app.console.Header(header, levels)

	start := time.Now()
	n, err := run(levels)
	app.metrics.ObserveCommand(kind, time.Since(start), err)

	// The journal carries the steps taken so replay does not depend on the
	// redo boundary in force.
	rec.Levels = n
	if err != nil {
		app.logger.Warn(kind+" failed", zap.Int("levels", levels), zap.Int("done", n), zap.Error(err))
		if n > 0 {
			app.record(ctx, rec)
			app.publish(ctx, t, levels, n)
		}
		return n, NewOperationError(kind, fmt.Sprintf("%d levels", levels), err)
	}

	app.logger.Debug(kind,
		zap.Int("levels", levels),
		zap.Int("done", n),
		zap.Int("cursor", app.engine.Cursor()))

	app.record(ctx, rec)
	app.publish(ctx, t, levels, n)
	return n, nil
}

// BeginGroup starts an undo group.
func (app *Application) BeginGroup(name string) {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.engine.BeginUndoGroup(name)
	app.record(context.Background(), journal.GroupRecord(journal.KindGroupBegin, name))
}

// EndGroup closes the current undo group.
func (app *Application) EndGroup() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if err := app.engine.EndUndoGroup(); err != nil {
		return err
	}
	app.record(context.Background(), journal.GroupRecord(journal.KindGroupEnd, ""))
	return nil
}

// CancelGroup abandons the current undo group and reverses its computes.
func (app *Application) CancelGroup() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if err := app.engine.CancelUndoGroup(); err != nil {
		return err
	}
	app.record(context.Background(), journal.GroupRecord(journal.KindGroupCancel, ""))
	return nil
}

// ClearHistory drops the command log and keeps the current value.
func (app *Application) ClearHistory(ctx context.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.engine.ClearHistory()
	app.record(ctx, journal.ClearRecord())
	app.publish(ctx, event.TopicHistoryCleared, 0, 0)
}

// Replay rebuilds the session from the journal. Replayed records are not
// journaled again.
func (app *Application) Replay(ctx context.Context) (int, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	n, err := journal.Replay(ctx, app.journal, app.engine)
	app.metrics.SetHistory(app.engine.Cursor(), app.engine.Len())
	if err != nil {
		return n, NewOperationError("replay", app.describeJournal(), err)
	}
	app.logger.Info("journal replayed",
		zap.Int("records", n),
		zap.Int64("value", app.engine.Value()),
		zap.Int("cursor", app.engine.Cursor()))
	return n, nil
}

// ResetJournal deletes every journaled record. The session itself is
// unchanged.
func (app *Application) ResetJournal(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if err := app.journal.Clear(ctx); err != nil {
		return NewOperationError("reset journal", app.describeJournal(), err)
	}
	app.logger.Info("journal reset", zap.String("journal", app.describeJournal()))
	return nil
}

func (app *Application) describeJournal() string {
	if rs, ok := app.journal.(*journal.RedisStore); ok {
		return rs.Key()
	}
	return "memory"
}

// Subscribe registers fn for events matching pattern.
func (app *Application) Subscribe(pattern topic.Topic, fn func(ctx context.Context, ev any) error) (*event.Subscription, error) {
	return app.bus.SubscribeFunc(pattern, fn)
}

// record appends r to the journal. Journal failures are logged, not returned:
// the in-memory session stays authoritative.
func (app *Application) record(ctx context.Context, r journal.Record) {
	if err := app.journal.Append(ctx, r); err != nil {
		app.logger.Error("journal append failed", zap.String("kind", string(r.Kind)), zap.Error(err))
	}
}

func (app *Application) publish(ctx context.Context, t topic.Topic, requested, steps int) {
	cursor, length := app.engine.Cursor(), app.engine.Len()
	app.metrics.SetHistory(cursor, length)

	ev := event.NewEvent(t, event.HistoryMoved{
		Requested: requested,
		Steps:     steps,
		Cursor:    cursor,
		Len:       length,
		Value:     app.engine.Value(),
	}, "history")
	if err := app.bus.Publish(ctx, ev); err != nil {
		app.logger.Warn("event handler failed", zap.String("topic", t.String()), zap.Error(err))
	}
}

// Close releases the journal and flushes the logger.
func (app *Application) Close() error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	err := app.journal.Close()
	_ = app.logger.Sync()
	if err != nil {
		return NewComponentError("journal", "close", err)
	}
	return nil
}
