package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiYell  = "\033[33m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
)

// ConsoleHandler renders records as single human-readable lines:
//
//	15:04:05.000 INFO  image normalized | image.passes=1 image.size=48213 (imagesvc/pipeline.go:88)
type ConsoleHandler struct {
	out    io.Writer
	level  slog.Leveler
	color  bool
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// NewConsoleHandler creates a ConsoleHandler writing to out.
func NewConsoleHandler(out io.Writer, level slog.Leveler, color bool) *ConsoleHandler {
	return &ConsoleHandler{out: out, level: level, color: color, mu: new(sync.Mutex)}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString(h.paint(ansiGray, r.Time.Format("15:04:05.000")))
	buf.WriteByte(' ')
	buf.WriteString(h.paint(levelColor(r.Level), fmt.Sprintf("%-5s", r.Level.String())))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	if len(attrs) > 0 {
		buf.WriteString(h.paint(ansiGray, " |"))

		for _, a := range attrs {
			h.writeAttr(&buf, prefix, a)
		}
	}

	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		source := fmt.Sprintf(" (%s/%s:%d)", filepath.Base(filepath.Dir(frame.File)), filepath.Base(frame.File), frame.Line)
		buf.WriteString(h.paint(ansiGray, source))
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

func (h *ConsoleHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, prefix+a.Key+".", ga)
		}

		return
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix + a.Key + "=")
	buf.WriteString(h.paint(ansiGray, a.Value.String()))
}

func (h *ConsoleHandler) paint(code, s string) string {
	if !h.color || code == "" {
		return s
	}

	return code + s + ansiReset
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYell
	case level >= slog.LevelInfo:
		return ansiGreen
	default:
		return ansiCyan
	}
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return &clone
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)

	return &clone
}
