package fetch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/slicecache/internal/adapters/fs"
	"go.trai.ch/slicecache/internal/adapters/logger"
	"go.trai.ch/slicecache/internal/core/ports"
)

// NodeID is the unique identifier for the bundle fetcher Graft node.
const NodeID graft.ID = "adapter.fetch"

func init() {
	graft.Register(graft.Node[ports.BundleFetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.BundleFetcher, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(walker, log), nil
		},
	})
}
