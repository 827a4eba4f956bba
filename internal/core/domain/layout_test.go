package domain_test

import (
	"path/filepath"
	"testing"

	"go.trai.ch/lockmap/internal/core/domain"
)

func TestLayoutPaths(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "DefaultStatePath",
			got:      domain.DefaultStatePath(),
			expected: ".lockmap",
		},
		{
			name:     "DefaultCachePath",
			got:      domain.DefaultCachePath(),
			expected: filepath.Join(".lockmap", "cache"),
		},
		{
			name:     "DefaultMetricsPath",
			got:      domain.DefaultMetricsPath(),
			expected: filepath.Join(".lockmap", "metrics.prom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}
