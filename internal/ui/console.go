package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/chaz8081/gbwatch/internal/notify"
)

const keyCtrlC = 0x03

// ConsoleUI draws dialogs on a terminal and acknowledges the current
// dialog on any keypress. The terminal is switched to raw mode while Run
// is active.
type ConsoleUI struct {
	StatusBar
	slot

	in  io.Reader
	out io.Writer

	outMu sync.Mutex

	// OnInterrupt is called when Ctrl-C is read, since raw mode stops the
	// terminal from raising SIGINT.
	OnInterrupt func()
}

// NewConsoleUI creates a ConsoleUI reading keys from in and drawing to
// out. Nil values default to os.Stdin and os.Stdout.
func NewConsoleUI(in io.Reader, out io.Writer) *ConsoleUI {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleUI{in: in, out: out}
}

func (u *ConsoleUI) ShowDialog(text string, onAck func()) notify.Dialog {
	d := u.open(text, onAck)
	u.draw(text)
	return d
}

// draw renders text in a box with CRLF line endings so it displays
// correctly in raw mode.
func (u *ConsoleUI) draw(text string) {
	lines := strings.Split(text, "\n")
	width := 0
	for _, l := range lines {
		width = max(width, len(l))
	}
	var b strings.Builder
	border := "+" + strings.Repeat("-", width+2) + "+\r\n"
	b.WriteString(border)
	for _, l := range lines {
		fmt.Fprintf(&b, "| %-*s |\r\n", width, l)
	}
	b.WriteString(border)
	b.WriteString("  press any key to dismiss\r\n")

	u.outMu.Lock()
	defer u.outMu.Unlock()
	io.WriteString(u.out, b.String())
}

// Run reads keys until ctx is done or input ends. Each key acknowledges
// the current dialog; Ctrl-C calls OnInterrupt and stops.
func (u *ConsoleUI) Run(ctx context.Context) error {
	if f, ok := u.in.(*os.File); ok && terminal.IsTerminal(int(f.Fd())) {
		state, err := terminal.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("ui: raw terminal: %w", err)
		}
		defer terminal.Restore(int(f.Fd()), state)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make(chan byte)
	errCh := make(chan error, 1)
	go func() {
		var b [1]byte
		for {
			if _, err := u.in.Read(b[:]); err != nil {
				errCh <- err
				return
			}
			select {
			case keys <- b[0]:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("ui: reading keys: %w", err)
		case k := <-keys:
			if k == keyCtrlC {
				if u.OnInterrupt != nil {
					u.OnInterrupt()
				}
				return nil
			}
			u.AckCurrent()
		}
	}
}

// Compile-time check that ConsoleUI implements Surface.
var _ Surface = (*ConsoleUI)(nil)
