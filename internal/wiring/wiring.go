// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/lockmap/internal/adapters/config"
	_ "go.trai.ch/lockmap/internal/adapters/fetch"
	_ "go.trai.ch/lockmap/internal/adapters/fs"
	_ "go.trai.ch/lockmap/internal/adapters/linear"
	_ "go.trai.ch/lockmap/internal/adapters/lockfile"
	_ "go.trai.ch/lockmap/internal/adapters/logger"
	_ "go.trai.ch/lockmap/internal/adapters/metrics"
	_ "go.trai.ch/lockmap/internal/adapters/provider"
	// Register app nodes.
	_ "go.trai.ch/lockmap/internal/app"
)
