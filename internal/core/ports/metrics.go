package ports

import (
	"time"

	"go.trai.ch/lockmap/internal/core/domain"
)

// Metrics records counters about resolution sessions.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ObserveLookup counts one latest-version lookup against provider.
	ObserveLookup(provider string, err error)

	// ObserveFetch counts one fetch, served from cache or from the origin.
	ObserveFetch(cached bool)

	// ObserveOperation records the outcome and duration of a command.
	ObserveOperation(operation string, elapsed time.Duration, report *domain.Report, err error)

	// WriteFile writes all collected metrics in text exposition format.
	WriteFile(path string) error
}
