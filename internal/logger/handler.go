package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// PrettyHandler is a custom slog.Handler for human-friendly CI console output
type PrettyHandler struct {
	opts        *slog.HandlerOptions
	w           io.Writer
	mu          *sync.Mutex
	attrs       []slog.Attr
	groups      []string
	annotations bool
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{
		opts:  opts,
		w:     w,
		mu:    &sync.Mutex{},
		attrs: []slog.Attr{},
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	attrs := make([]string, 0)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.formatAttr(a))
		return true
	})
	for _, a := range h.attrs {
		attrs = append(attrs, h.formatAttr(a))
	}

	// Workflow commands must start the line and cannot carry ANSI colour codes.
	if cmd := h.workflowCommand(r.Level); cmd != "" {
		buf.WriteString(cmd)
		buf.WriteString(escapeCommandData(r.Message))
		if len(attrs) > 0 {
			buf.WriteString(" ")
			buf.WriteString(escapeCommandData(plainAttrs(r, h.attrs)))
		}
		buf.WriteString("\n")
		h.mu.Lock()
		defer h.mu.Unlock()
		_, err := io.WriteString(h.w, buf.String())
		return err
	}

	buf.WriteString(h.formatLevel(r.Level))
	buf.WriteString(" ")
	buf.WriteString(r.Message)

	if len(attrs) > 0 {
		buf.WriteString(" ")
		buf.WriteString(strings.Join(attrs, " "))
	}

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			buf.WriteString(" ")
			buf.WriteString(color.HiBlackString("(%s:%d)", filepath.Base(frame.File), frame.Line))
		}
	}

	buf.WriteString("\n")
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &PrettyHandler{
		opts:        h.opts,
		w:           h.w,
		mu:          h.mu,
		attrs:       newAttrs,
		groups:      h.groups,
		annotations: h.annotations,
	}
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	return &PrettyHandler{
		opts:        h.opts,
		w:           h.w,
		mu:          h.mu,
		attrs:       h.attrs,
		groups:      newGroups,
		annotations: h.annotations,
	}
}

func (h *PrettyHandler) workflowCommand(level slog.Level) string {
	if !h.annotations {
		return ""
	}
	switch {
	case level >= slog.LevelError:
		return "::error::"
	case level >= slog.LevelWarn:
		return "::warning::"
	default:
		return ""
	}
}

func (h *PrettyHandler) formatLevel(level slog.Level) string {
	var badge string

	switch level {
	case slog.LevelDebug:
		badge = color.HiBlackString("[DEBUG]")
	case slog.LevelInfo:
		badge = color.CyanString("[INFO] ")
	case slog.LevelWarn:
		badge = color.YellowString("[WARN] ")
	case slog.LevelError:
		badge = color.RedString("[ERROR]")
	default:
		badge = fmt.Sprintf("[%s]", level.String())
	}

	return badge
}

func (h *PrettyHandler) formatAttr(a slog.Attr) string {
	key := h.qualify(a.Key)
	val := a.Value.String()

	switch a.Key {
	case "error", "err":
		return color.RedString("%s=%s", key, val)
	case "duration_ms", "duration":
		return color.MagentaString("%s=%s", key, val)
	case "count", "total", "total_lines", "size":
		return color.GreenString("%s=%s", key, val)
	default:
		return color.HiBlackString("%s=%s", key, val)
	}
}

func (h *PrettyHandler) qualify(key string) string {
	if len(h.groups) > 0 {
		return strings.Join(h.groups, ".") + "." + key
	}
	return key
}

func plainAttrs(r slog.Record, extra []slog.Attr) string {
	parts := make([]string, 0, r.NumAttrs()+len(extra))
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Key+"="+a.Value.String())
		return true
	})
	for _, a := range extra {
		parts = append(parts, a.Key+"="+a.Value.String())
	}
	return strings.Join(parts, " ")
}

// escapeCommandData applies the escaping GitHub expects for workflow command payloads.
func escapeCommandData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
