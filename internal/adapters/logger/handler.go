package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/lockmap/internal/ui/output"
	"go.trai.ch/lockmap/internal/ui/style"
)

// PrettyHandler is a slog.Handler writing one colored line per record:
// an icon for warnings and errors, the message, then key=value pairs.
// Group names prefix the keys they enclose.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler

	// prefix is the group path applied to attributes added from now on.
	prefix string
	// attrs are preformatted pairs from WithAttrs.
	attrs []string
}

// NewPrettyHandler creates a PrettyHandler on w, stderr when nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w, output.Profile()),
		level: level,
	}
}

// Enabled reports whether records at level are written.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := levelStyle(r.Level)

	var b strings.Builder
	if icon != "" {
		b.WriteString(icon + " ")
	}
	b.WriteString(r.Message)

	pairs := slices.Clip(h.attrs)
	r.Attrs(func(attr slog.Attr) bool {
		pairs = appendAttr(pairs, h.prefix, attr)
		return true
	})
	for _, pair := range pairs {
		b.WriteString(" " + pair)
	}

	line := h.out.String(b.String()).Foreground(termenv.RGBColor(string(color)))
	_, err := h.out.WriteString(line.String() + "\n")
	return err
}

// WithAttrs returns a handler that writes attrs on every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = slices.Clip(h.attrs)
	for _, attr := range attrs {
		next.attrs = appendAttr(next.attrs, h.prefix, attr)
	}
	return &next
}

// WithGroup returns a handler nesting later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func levelStyle(level slog.Level) (string, lipgloss.Color) {
	switch {
	case level >= slog.LevelError:
		return style.ErrorIcon, style.Red
	case level >= slog.LevelWarn:
		return style.WarnIcon, style.Yellow
	default:
		return "", style.Muted
	}
}

// appendAttr formats attr as key=value pairs. Groups are flattened with
// dotted keys; an inline group with an empty key adds no prefix.
func appendAttr(pairs []string, prefix string, attr slog.Attr) []string {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return pairs
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			pairs = appendAttr(pairs, prefix, member)
		}
		return pairs
	}
	return append(pairs, prefix+attr.Key+"="+attr.Value.String())
}
