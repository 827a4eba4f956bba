// Package detector decides whether terminal output is colored.
package detector

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode represents how the reporter colors its output.
type ColorMode int

const (
	// ModeAuto keeps the output package's default profile.
	ModeAuto ColorMode = iota
	// ModeColor forces ANSI colors.
	ModeColor
	// ModePlain disables colors.
	ModePlain
)

// DetectEnvironment returns the recommended color mode. NO_COLOR always
// wins; otherwise a terminal on stderr or a CI log gets colors.
func DetectEnvironment() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}

	isTTY := term.IsTerminal(int(os.Stderr.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if isTTY || isCI {
		return ModeColor
	}
	return ModePlain
}

// ResolveMode applies a user override to auto-detection.
// userFlag should be one of: "auto", "always", "never", or empty.
func ResolveMode(autoDetected ColorMode, userFlag string) ColorMode {
	switch userFlag {
	case "always":
		return ModeColor
	case "never":
		return ModePlain
	default:
		return autoDetected
	}
}

// Profile returns the termenv profile for the mode.
func (m ColorMode) Profile() termenv.Profile {
	switch m {
	case ModeColor:
		return termenv.ANSI
	case ModePlain:
		return termenv.Ascii
	default:
		if os.Getenv("NO_COLOR") != "" {
			return termenv.Ascii
		}
		return termenv.ANSI
	}
}
