package fetch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lockmap/internal/adapters/metrics"
	"go.trai.ch/lockmap/internal/core/ports"
)

// NodeID is the unique identifier for the fetcher factory Graft node.
const NodeID graft.ID = "adapter.fetcher"

func init() {
	graft.Register(graft.Node[ports.FetcherFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{metrics.NodeID},
		Run: func(ctx context.Context) (ports.FetcherFactory, error) {
			recorder, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(recorder), nil
		},
	})
}
