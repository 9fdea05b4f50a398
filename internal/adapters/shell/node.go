package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/slicecache/internal/adapters/logger"
	"go.trai.ch/slicecache/internal/core/ports"
)

// NodeID is the unique identifier for the slicer Graft node.
const NodeID graft.ID = "adapter.slicer"

func init() {
	graft.Register(graft.Node[ports.Slicer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Slicer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSlicer(log), nil
		},
	})
}
