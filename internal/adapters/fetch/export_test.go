package fetch

import (
	"net/http"
	"time"

	"go.trai.ch/lockmap/internal/core/ports"
)

// NewFetcherWithClient exports newFetcherWithClient for testing.
func NewFetcherWithClient(opts Options, metrics ports.Metrics, client *http.Client, now func() time.Time) (*Fetcher, error) {
	f, err := newFetcherWithClient(opts, metrics, client)
	if err != nil {
		return nil, err
	}
	if now != nil {
		f.now = now
	}
	return f, nil
}
