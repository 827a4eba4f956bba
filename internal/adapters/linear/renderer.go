// Package linear prints operation results as plain, line-oriented text.
package linear

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/ui/output"
	"go.trai.ch/lockmap/internal/ui/style"
)

// Renderer implements ports.Reporter. Summaries go to stderr, data the
// user may pipe (import maps, inspections) to stdout.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu sync.Mutex
}

// Option configures a Renderer.
type Option func(*rendererConfig)

type rendererConfig struct {
	profile termenv.Profile
}

// WithProfile fixes the color profile instead of following the environment.
func WithProfile(p termenv.Profile) Option {
	return func(c *rendererConfig) {
		c.profile = p
	}
}

// NewRenderer creates a new Renderer. Nil writers default to the process
// streams.
func NewRenderer(stdout, stderr io.Writer, opts ...Option) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	cfg := rendererConfig{profile: output.Profile()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.New(stderr, cfg.profile),
	}
}

// eventStyle is how one event kind is shown. Reused primaries are not
// printed.
var eventStyle = map[domain.EventKind]struct {
	icon  string
	color string
}{
	domain.EventAdded:      {style.Added, string(style.Green)},
	domain.EventForked:     {style.Forked, string(style.Yellow)},
	domain.EventOverride:   {style.Override, string(style.Yellow)},
	domain.EventDeprecated: {style.Deprecated, string(style.Red)},
	domain.EventSkipped:    {style.Skipped, string(style.Muted)},
}

// Summary prints one line per event followed by the totals.
func (r *Renderer) Summary(operation string, report *domain.Report, written bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := r.output.String(fmt.Sprintf("[%s]", operation)).Faint().String()
	if report == nil {
		report = &domain.Report{}
	}

	for _, e := range report.Events {
		s, ok := eventStyle[e.Kind]
		if !ok {
			continue
		}
		symbol := r.output.String(s.icon).Foreground(termenv.RGBColor(s.color)).String()

		line := fmt.Sprintf("%s %s %s %s", prefix, symbol, e.Kind, e.Coordinate)
		if e.Path != "" {
			line += fmt.Sprintf(" (%s)", e.Path)
		}
		if e.Detail != "" {
			line += ": " + e.Detail
		}
		_, _ = fmt.Fprintln(r.stderr, line)
	}

	state := "up to date"
	if written {
		state = "lockfile and import map updated"
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %d added, %d forked, %d deprecated, %d overrides; %s\n",
		prefix,
		report.Count(domain.EventAdded),
		report.Count(domain.EventForked),
		report.Count(domain.EventDeprecated),
		report.Count(domain.EventOverride),
		state,
	)
}

// DryRun writes the import map that would have been saved.
func (r *Renderer) DryRun(importMap []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = r.stdout.Write(importMap)
}

// Inspection prints the served target of each subpath followed by the full
// resolution set, one subpath per line.
func (r *Renderer) Inspection(inspection *domain.Inspection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", inspection.Alias, inspection.Coordinate, inspection.URL)

	b.WriteString("served:\n")
	writeColumns(&b, inspection.Served, func(v string) string { return v })

	b.WriteString("resolution set:\n")
	writeColumns(&b, inspection.ResolutionSet, func(v []string) string { return strings.Join(v, " ") })

	_, _ = io.WriteString(r.stdout, b.String())
}

func writeColumns[V any](b *strings.Builder, rows map[string]V, format func(V) string) {
	keys := slices.Sorted(maps.Keys(rows))
	if len(keys) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		fmt.Fprintf(b, "  %-*s  %s\n", width, k, format(rows[k]))
	}
}
