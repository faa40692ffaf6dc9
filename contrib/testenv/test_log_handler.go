package testenv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// TestLogHandler is a slog.Handler that prints a message index (starting
// from 0), the level, and the message content, without the timestamp.
// This allows test log output to be deterministic.
type TestLogHandler struct {
	mu          sync.Mutex
	out         io.Writer
	index       int
	attrs       []slog.Attr
	groups      []string
	ignoreDebug bool
}

func NewTestLogHandler(out io.Writer) *TestLogHandler {
	return &TestLogHandler{out: out}
}

// TestLogHandlerOption is a function that configures a TestLogHandler
type TestLogHandlerOption func(*TestLogHandler)

// WithIgnoreDebug configures the handler to ignore DEBUG level messages
func WithIgnoreDebug() TestLogHandlerOption {
	return func(h *TestLogHandler) {
		h.ignoreDebug = true
	}
}

// NewTestLogHandlerWithOptions creates a TestLogHandler with custom options
func NewTestLogHandlerWithOptions(out io.Writer, opts ...TestLogHandlerOption) *TestLogHandler {
	h := &TestLogHandler{out: out}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

//nolint:gocritic
func (h *TestLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelDebug && h.ignoreDebug {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := h.attrsToString(&r)
	if attrs != "" {
		fmt.Fprintf(h.out, "[%d] %s: %s %s\n", h.index, r.Level, r.Message, attrs)
	} else {
		fmt.Fprintf(h.out, "[%d] %s: %s\n", h.index, r.Level, r.Message)
	}
	h.index++
	return nil
}

func (h *TestLogHandler) attrsToString(r *slog.Record) string {
	var sb strings.Builder

	for i, attr := range h.attrs {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(attr.String())
	}

	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(attr slog.Attr) bool {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		if prefix != "" {
			sb.WriteString(prefix)
			sb.WriteString(".")
		}
		sb.WriteString(attr.String())
		return true
	})

	return sb.String()
}

func (h *TestLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level == slog.LevelDebug && h.ignoreDebug {
		return false
	}
	return true
}

func (h *TestLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := strings.Join(h.groups, ".")
	qualified := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	qualified = append(qualified, h.attrs...)
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		qualified = append(qualified, attr)
	}
	return &TestLogHandler{
		out:         h.out,
		index:       h.index,
		attrs:       qualified,
		groups:      h.groups,
		ignoreDebug: h.ignoreDebug,
	}
}

func (h *TestLogHandler) WithGroup(name string) slog.Handler {
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &TestLogHandler{
		out:         h.out,
		index:       h.index,
		attrs:       h.attrs,
		groups:      groups,
		ignoreDebug: h.ignoreDebug,
	}
}
