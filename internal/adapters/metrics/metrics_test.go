package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lockmap/internal/adapters/metrics"
	"go.trai.ch/lockmap/internal/core/domain"
)

func TestRecorder_WriteFile(t *testing.T) {
	t.Parallel()

	r := metrics.New()
	r.ObserveLookup("jspm", nil)
	r.ObserveLookup("jspm", domain.ErrPackageNotFound)
	r.ObserveFetch(true)
	r.ObserveFetch(false)
	r.ObserveFetch(false)
	r.ObserveOperation("install", 1500*time.Millisecond, &domain.Report{Events: []domain.Event{
		{Kind: domain.EventAdded},
		{Kind: domain.EventAdded},
		{Kind: domain.EventForked},
	}}, nil)
	r.ObserveOperation("update", time.Second, nil, errors.New("boom"))

	path := filepath.Join(t.TempDir(), "nested", "metrics.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `lockmap_provider_lookups_total{provider="jspm"} 2`)
	assert.Contains(t, text, `lockmap_provider_lookup_errors_total{kind="provider",provider="jspm"} 1`)
	assert.Contains(t, text, `lockmap_fetches_total{source="origin"} 2`)
	assert.Contains(t, text, `lockmap_install_events_total{kind="added"} 2`)
	assert.Contains(t, text, `lockmap_operations_total{operation="update",result="failure"} 1`)
	assert.Contains(t, text, `lockmap_operation_duration_seconds_count{operation="install"} 1`)
}

func TestRecorder_Collectors(t *testing.T) {
	t.Parallel()

	r := metrics.New()
	r.ObserveFetch(true)

	count, err := testutil.GatherAndCount(r.Registry(), "lockmap_fetches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
