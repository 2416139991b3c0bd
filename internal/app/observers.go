package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/undocalc/internal/engine"
	"github.com/dshills/undocalc/internal/event"
)

// ConsolePrinter writes every accumulator change as one line.
type ConsolePrinter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsolePrinter creates a printer writing to out.
func NewConsolePrinter(out io.Writer) *ConsolePrinter {
	return &ConsolePrinter{out: out}
}

// Notify implements accumulator.Observer.
func (p *ConsolePrinter) Notify(change engine.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, change.String())
}

// Header writes an undo/redo banner.
func (p *ConsolePrinter) Header(kind string, levels int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "---- %s %d levels\n", kind, levels)
}

// metricsObserver keeps the accumulator gauge current.
type metricsObserver struct {
	m *Metrics
}

func (o metricsObserver) Notify(change engine.Change) {
	o.m.SetValue(change.Value)
}

// busBridge republishes accumulator changes on the event bus.
type busBridge struct {
	bus    *event.Bus
	logger *zap.Logger
}

func (b busBridge) Notify(change engine.Change) {
	ev := event.NewEvent(event.TopicAccumulatorChanged, event.ValueChanged{
		Value:   change.Value,
		Op:      change.Op.String(),
		Operand: change.Operand,
	}, "accumulator")

	if err := b.bus.Publish(context.Background(), ev); err != nil {
		b.logger.Warn("event handler failed",
			zap.String("topic", event.TopicAccumulatorChanged.String()),
			zap.Error(err))
	}
}
