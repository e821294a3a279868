// logging.go - structured logging wrapper for the PDP-16e core engine
//
// Grounded on the reference engine corpus's slog wrapper: a small
// handler adapter that timestamps, tags the level, and serializes
// through a mutex so concurrent callers (the keyboard producer
// goroutine pushing keys, the stepping goroutine draining them) never
// interleave partial log lines.

package pdp16e

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// engineLogHandler serializes writes from a shared handler so that logs
// emitted from the keyboard-push goroutine and the stepping goroutine
// don't interleave.
type engineLogHandler struct {
	h  slog.Handler
	mu *sync.Mutex
}

func (h *engineLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *engineLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &engineLogHandler{h: h.h.WithAttrs(attrs), mu: h.mu}
}

func (h *engineLogHandler) WithGroup(name string) slog.Handler {
	return &engineLogHandler{h: h.h.WithGroup(name), mu: h.mu}
}

func (h *engineLogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.h.Handle(ctx, r)
}

// NewLogger builds a structured logger writing to w. A nil w defaults
// to os.Stderr. The engine logs only fault transitions; it never logs
// on the per-cycle hot path.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	base := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(&engineLogHandler{h: base, mu: &sync.Mutex{}})
}

// discardLogger returns a logger that drops everything, used as the
// Engine default so tests and library callers never need to supply one.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// logFault is a small helper so call sites read naturally:
// logFault(e.logger, "pipeline", f, e.pipeline.cycles)
func logFault(l *slog.Logger, op string, f *Fault, cycle uint64) {
	l.Error("fault", slog.String("op", op), slog.String("kind", f.Kind.String()),
		slog.Uint64("cycle", cycle), slog.Time("at", time.Now()))
}
