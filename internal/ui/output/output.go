// Package output builds termenv outputs that follow lockmap's color rules.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ColorEnv overrides color detection with "always" or "never".
const ColorEnv = "LOCKMAP_COLOR"

// Override returns the profile forced by LOCKMAP_COLOR, if any.
func Override() (termenv.Profile, bool) {
	switch os.Getenv(ColorEnv) {
	case "always":
		return termenv.ANSI, true
	case "never":
		return termenv.Ascii, true
	default:
		return termenv.Ascii, false
	}
}

// Profile returns the profile for diagnostics. LOCKMAP_COLOR wins, then
// NO_COLOR, then whatever the environment reports.
func Profile() termenv.Profile {
	if p, ok := Override(); ok {
		return p
	}
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New returns an Output on w with a fixed profile. A nil writer means stderr.
func New(w io.Writer, profile termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(profile),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
