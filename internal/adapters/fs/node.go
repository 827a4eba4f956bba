package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lockmap/internal/core/ports"
)

// NodeID is the unique identifier for the file walker Graft node.
const NodeID graft.ID = "adapter.walker"

func init() {
	graft.Register(graft.Node[ports.FileWalker]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileWalker, error) {
			return NewWalker(), nil
		},
	})
}
