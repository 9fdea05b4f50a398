package watcher

import (
	"context"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/slicecache/internal/adapters/logger"
	"go.trai.ch/slicecache/internal/core/ports"
)

// NodeID is the unique identifier for the bundle watcher Graft node.
const NodeID graft.ID = "adapter.watcher"

// DefaultDebounceWindow is the default time window for debouncing file events.
const DefaultDebounceWindow = 300 * time.Millisecond

func init() {
	graft.Register(graft.Node[ports.Watcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Watcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWatcher(log), nil
		},
	})
}
