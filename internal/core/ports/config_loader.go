package ports

import "go.trai.ch/lockmap/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the project enclosing cwd and returns its settings and manifest.
	Load(cwd string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to find the project root.
	// Returns the directory containing lockmap.yaml or package.json.
	DiscoverRoot(cwd string) (string, error)
}
