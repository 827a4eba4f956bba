package ports

import "go.trai.ch/lockmap/internal/core/domain"

// LockStore persists the dependency graph and the import map of a project.
//
//go:generate mockgen -source=lock_store.go -destination=mocks/mock_lock_store.go -package=mocks
type LockStore interface {
	// LoadGraph reads the lockfile. Returns nil, nil if it does not exist.
	LoadGraph(project *domain.Project) (*domain.DependencyGraph, error)

	// LoadImportMap reads the import map output. Returns nil, nil if it does not exist.
	LoadImportMap(project *domain.Project) (*domain.ImportMap, error)

	// Save writes the lockfile and the import map. Files whose content is
	// unchanged are left untouched. It reports whether anything was written.
	Save(project *domain.Project, graph *domain.DependencyGraph, importMap *domain.ImportMap) (bool, error)
}
