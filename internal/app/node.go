package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lockmap/internal/adapters/config"
	"go.trai.ch/lockmap/internal/adapters/fs"
	"go.trai.ch/lockmap/internal/adapters/linear"
	"go.trai.ch/lockmap/internal/adapters/lockfile"
	"go.trai.ch/lockmap/internal/adapters/logger"
	"go.trai.ch/lockmap/internal/adapters/metrics"
	"go.trai.ch/lockmap/internal/adapters/provider"
	"go.trai.ch/lockmap/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main application Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the application components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the application with the logger used to report its
// failures. Shutdown flushes the tracer provider and runs once on exit.
type Components struct {
	App      *App
	Logger   ports.Logger
	Shutdown func(context.Context) error
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			provider.NodeID,
			lockfile.NodeID,
			logger.NodeID,
			metrics.NodeID,
			fs.NodeID,
			linear.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run:       runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	providers, err := graft.Dep[ports.ProviderFactory](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.LockStore](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	m, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}
	walker, err := graft.Dep[ports.FileWalker](ctx)
	if err != nil {
		return nil, err
	}
	reporter, err := graft.Dep[ports.Reporter](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, providers, store, log, m, walker, reporter), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	return &Components{App: a, Logger: log, Shutdown: SetupTracing(log)}, nil
}
