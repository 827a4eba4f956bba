package provider

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lockmap/internal/adapters/fetch"
	"go.trai.ch/lockmap/internal/adapters/fs"
	"go.trai.ch/lockmap/internal/core/ports"
)

// NodeID is the unique identifier for the provider factory Graft node.
const NodeID graft.ID = "adapter.provider"

func init() {
	graft.Register(graft.Node[ports.ProviderFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fetch.NodeID, fs.NodeID},
		Run: func(ctx context.Context) (ports.ProviderFactory, error) {
			fetchers, err := graft.Dep[ports.FetcherFactory](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[ports.FileWalker](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(fetchers, walker), nil
		},
	})
}
