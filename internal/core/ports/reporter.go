package ports

import "go.trai.ch/lockmap/internal/core/domain"

// Reporter prints operation results for the user.
//
//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks
type Reporter interface {
	// Summary prints the events of an operation and whether files changed.
	Summary(operation string, report *domain.Report, written bool)

	// DryRun prints the import map an operation would have written.
	DryRun(importMap []byte)

	// Inspection prints the exports of one installed package.
	Inspection(inspection *domain.Inspection)
}
