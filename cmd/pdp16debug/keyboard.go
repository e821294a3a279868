// keyboard.go - raw-mode terminal keyboard producer
//
// Grounded on the reference engine's terminal_host.go: put stdin into
// raw mode, spin a goroutine reading one byte at a time, translate the
// host's line-editing conventions (CR for Enter, DEL for Backspace)
// into the machine's key codes, and restore the terminal on Stop.

package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/term"

	pdp16e "github.com/coldiron/pdp16e"
)

// termKeyboard reads raw stdin and pushes translated key codes until
// its context is cancelled. It implements pdp16e.KeyboardProducer.
type termKeyboard struct {
	fd int
}

func newTermKeyboard() *termKeyboard {
	return &termKeyboard{fd: int(os.Stdin.Fd())}
}

// Run puts the terminal into raw mode and pushes key codes via push
// until ctx is done, restoring the terminal before returning.
func (t *termKeyboard) Run(ctx context.Context, push func(code byte)) error {
	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	defer term.Restore(t.fd, oldState)

	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, err := os.Stdin.Read(buf)
		if n == 0 {
			if err != nil {
				return nil
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if code, ok := translateKey(buf[0]); ok {
			push(code)
		}
	}
}

// translateKey maps a raw terminal byte to one of the machine's key
// codes, per pdp16e's bundled alphabet (a-z, Enter, Backspace, Space).
func translateKey(b byte) (byte, bool) {
	switch {
	case b == '\r' || b == '\n':
		return pdp16e.KeyEnter, true
	case b == 0x7F || b == 0x08:
		return pdp16e.KeyBackspace, true
	case b == ' ':
		return pdp16e.KeySpace, true
	case b >= 'a' && b <= 'z':
		return b - 'a' + pdp16e.KeyA, true
	case b >= 'A' && b <= 'Z':
		return (b - 'A') + pdp16e.KeyA, true
	default:
		return 0, false
	}
}
