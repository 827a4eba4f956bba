// Package style holds the colors and icons shared by the logger and the
// reporter.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Muted  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Event icons.
const (
	Added      = "✓"
	Forked     = "~"
	Override   = "!"
	Deprecated = "✗"
	Skipped    = "○"
)

// Log level icons.
const (
	WarnIcon  = "!"
	ErrorIcon = "✗"
)
