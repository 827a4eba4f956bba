package linear

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/lockmap/internal/adapters/detector"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/ui/output"
)

// NodeID is the unique identifier for the reporter Graft node.
const NodeID graft.ID = "adapter.reporter"

func init() {
	graft.Register(graft.Node[ports.Reporter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Reporter, error) {
			mode := detector.ResolveMode(detector.DetectEnvironment(), os.Getenv(output.ColorEnv))
			return NewRenderer(nil, nil, WithProfile(mode.Profile())), nil
		},
	})
}
