package terminal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

// pressedScreen queues one key as soon as it is initialized.
type pressedScreen struct {
	tcell.SimulationScreen
}

func (s pressedScreen) Init() error {
	if err := s.SimulationScreen.Init(); err != nil {
		return err
	}
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	return nil
}

func simulated(sim tcell.SimulationScreen) Option {
	return WithScreen(func() (tcell.Screen, error) { return sim, nil })
}

func interactive(p *Prompter) { p.interactive = func() bool { return true } }

func TestWaitForKey_KeyPressed(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	p := NewPrompter(
		WithScreen(func() (tcell.Screen, error) { return pressedScreen{sim}, nil }),
		WithMessage("done"),
		interactive,
	)

	if err := p.WaitForKey(context.Background()); err != nil {
		t.Fatalf("WaitForKey() error = %v", err)
	}
}

func TestWaitForKey_ContextCanceled(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	p := NewPrompter(simulated(sim), interactive)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.WaitForKey(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForKey() error = %v, want DeadlineExceeded", err)
	}
}

func TestWaitForKey_NotInteractive(t *testing.T) {
	opened := false
	p := NewPrompter(WithScreen(func() (tcell.Screen, error) {
		opened = true
		return nil, errors.New("unreachable")
	}))
	p.interactive = func() bool { return false }

	if err := p.WaitForKey(context.Background()); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("WaitForKey() error = %v, want ErrNotInteractive", err)
	}
	if opened {
		t.Error("screen opened without a terminal")
	}
}

func TestWaitForKey_ScreenError(t *testing.T) {
	boom := errors.New("no tty")
	p := NewPrompter(WithScreen(func() (tcell.Screen, error) { return nil, boom }), interactive)

	if err := p.WaitForKey(context.Background()); !errors.Is(err, boom) {
		t.Errorf("WaitForKey() error = %v, want %v", err, boom)
	}
}
