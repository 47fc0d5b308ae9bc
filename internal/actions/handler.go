// Package actions adapts bumpchanges output to the GitHub Actions runner:
// log records become workflow commands (::debug::, ::notice::, ...) and step
// results are appended to the file named by GITHUB_OUTPUT.
package actions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// InWorkflow reports whether the process runs as a GitHub Actions step.
func InWorkflow() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// LevelNotice sits between Info and Warn and renders as a ::notice::
// annotation.
const LevelNotice = slog.Level(2)

// ParseLevel maps a configured level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "notice":
		return LevelNotice, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (valid: debug, info, notice, warn, error)", name)
}

// Handler is a slog.Handler that writes one workflow command per record.
// Attributes follow the message as key=value pairs.
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  string
	prefix string
}

// NewHandler returns a Handler writing records at or above level to w.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{mu: &sync.Mutex{}, w: w, level: level}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})

	line := commandPrefix(r.Level)
	msg := r.Message + b.String()
	if line != "" {
		msg = escapeData(msg)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line+msg)
	return err
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func commandPrefix(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "::error::"
	case level >= slog.LevelWarn:
		return "::warning::"
	case level >= LevelNotice:
		return "::notice::"
	case level >= slog.LevelInfo:
		return ""
	default:
		return "::debug::"
	}
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, group, ga)
		}
		return
	}

	value := a.Value.String()
	if strings.ContainsAny(value, " \t\"=") {
		value = fmt.Sprintf("%q", value)
	}
	fmt.Fprintf(b, " %s%s=%s", prefix, a.Key, value)
}

// escapeData encodes the characters the runner treats specially in command
// data.
func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}
