// Package terminal holds the interactive end of a session: it waits for a
// keypress on a full-screen tcell surface before the program exits.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

var (
	// ErrNotInteractive is returned when stdin or stdout is not a terminal.
	ErrNotInteractive = errors.New("not an interactive terminal")

	// ErrScreenClosed is returned when the screen stops delivering events.
	ErrScreenClosed = errors.New("screen closed")
)

// DefaultMessage is drawn while waiting.
const DefaultMessage = "Press any key to exit"

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Prompter waits for a single keypress.
type Prompter struct {
	newScreen   func() (tcell.Screen, error)
	interactive func() bool
	message     string
}

// Option configures a Prompter.
type Option func(*Prompter)

// WithScreen replaces the tcell screen factory.
func WithScreen(fn func() (tcell.Screen, error)) Option {
	return func(p *Prompter) {
		p.newScreen = fn
	}
}

// WithMessage sets the text drawn while waiting.
func WithMessage(msg string) Option {
	return func(p *Prompter) {
		p.message = msg
	}
}

// NewPrompter creates a Prompter on the process terminal.
func NewPrompter(opts ...Option) *Prompter {
	p := &Prompter{
		newScreen:   tcell.NewScreen,
		interactive: IsInteractive,
		message:     DefaultMessage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitForKey shows the message and blocks until a key is pressed or ctx is
// done. The screen is always restored before it returns.
func (p *Prompter) WaitForKey(ctx context.Context) error {
	if !p.interactive() {
		return ErrNotInteractive
	}

	screen, err := p.newScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	var once sync.Once
	fini := func() { once.Do(screen.Fini) }
	defer fini()

	// Fini unblocks PollEvent.
	stop := context.AfterFunc(ctx, fini)
	defer stop()

	p.draw(screen)
	for {
		switch screen.PollEvent().(type) {
		case nil:
			if err := ctx.Err(); err != nil {
				return err
			}
			return ErrScreenClosed
		case *tcell.EventKey:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			p.draw(screen)
		}
	}
}

func (p *Prompter) draw(screen tcell.Screen) {
	screen.Clear()

	width, height := screen.Size()
	runes := []rune(p.message)
	x := (width - len(runes)) / 2
	if x < 0 {
		x = 0
	}
	y := height / 2

	style := tcell.StyleDefault.Bold(true)
	for i, r := range runes {
		if x+i >= width {
			break
		}
		screen.SetContent(x+i, y, r, nil, style)
	}
	screen.HideCursor()
	screen.Show()
}
