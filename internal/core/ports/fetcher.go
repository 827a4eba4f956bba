package ports

import (
	"context"

	"go.trai.ch/lockmap/internal/core/domain"
)

// FetchPolicy controls how long a fetched resource may be served from cache.
type FetchPolicy uint8

const (
	// Immutable resources are versioned content and are cached forever.
	Immutable FetchPolicy = iota
	// Mutable resources are origin indexes and expire after the cache TTL.
	Mutable
)

func (p FetchPolicy) String() string {
	if p == Mutable {
		return "mutable"
	}
	return "immutable"
}

// Fetcher retrieves remote resources.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Get returns the body of url. A missing resource yields ErrNotFound.
	Get(ctx context.Context, url string, policy FetchPolicy) ([]byte, error)
}

// FetcherFactory creates a fetcher configured from project settings.
type FetcherFactory interface {
	New(settings domain.Settings) (Fetcher, error)
}
