package testlog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// New creates a slog text logger that writes to t.Log.
func New(t *testing.T) *slog.Logger {
	t.Helper()

	buf := bytes.NewBuffer(nil)
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	return slog.New(&slogHandler{
		delegate: handler,
		t:        t,
		buffer:   buf,
	})
}

type slogHandler struct {
	t        *testing.T
	delegate slog.Handler
	buffer   *bytes.Buffer
	mu       sync.Mutex
}

func (h *slogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.delegate.Enabled(ctx, level)
}

func (h *slogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.delegate.Handle(ctx, r); err != nil {
		return err
	}

	content := h.buffer.String()
	h.buffer.Reset()

	h.t.Helper()
	h.t.Log(strings.TrimSuffix(content, "\n"))

	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &slogHandler{
		t:        h.t,
		delegate: h.delegate.WithAttrs(attrs),
		buffer:   h.buffer,
	}
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	return &slogHandler{
		t:        h.t,
		delegate: h.delegate.WithGroup(name),
		buffer:   h.buffer,
	}
}
