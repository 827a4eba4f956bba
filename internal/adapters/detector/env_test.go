package detector_test

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/lockmap/internal/adapters/detector"
)

func TestDetectEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		ciValue  string
		noColor  string
		expected detector.ColorMode
	}{
		{
			name:     "CI=true enables color",
			ciValue:  "true",
			expected: detector.ModeColor,
		},
		{
			name:     "CI=1 enables color",
			ciValue:  "1",
			expected: detector.ModeColor,
		},
		{
			name:     "NO_COLOR wins over CI",
			ciValue:  "true",
			noColor:  "1",
			expected: detector.ModePlain,
		},
		{
			name:     "no terminal and no CI is plain",
			ciValue:  "",
			expected: detector.ModePlain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CI", tt.ciValue)
			t.Setenv("NO_COLOR", tt.noColor)

			// Test binaries run with stderr redirected, so only CI and
			// NO_COLOR decide the mode.
			assert.Equal(t, tt.expected, detector.DetectEnvironment())
		})
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name         string
		autoDetected detector.ColorMode
		userFlag     string
		expected     detector.ColorMode
	}{
		{
			name:         "auto respects auto-detection",
			autoDetected: detector.ModeColor,
			userFlag:     "auto",
			expected:     detector.ModeColor,
		},
		{
			name:         "empty respects auto-detection",
			autoDetected: detector.ModePlain,
			userFlag:     "",
			expected:     detector.ModePlain,
		},
		{
			name:         "always overrides plain",
			autoDetected: detector.ModePlain,
			userFlag:     "always",
			expected:     detector.ModeColor,
		},
		{
			name:         "never overrides color",
			autoDetected: detector.ModeColor,
			userFlag:     "never",
			expected:     detector.ModePlain,
		},
		{
			name:         "unknown value falls back to auto-detection",
			autoDetected: detector.ModeColor,
			userFlag:     "sometimes",
			expected:     detector.ModeColor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.ResolveMode(tt.autoDetected, tt.userFlag))
		})
	}
}

func TestColorMode_Profile(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.ANSI, detector.ModeColor.Profile())
	assert.Equal(t, termenv.Ascii, detector.ModePlain.Profile())
	assert.Equal(t, termenv.ANSI, detector.ModeAuto.Profile())

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, detector.ModeAuto.Profile())
}
