package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/slicecache/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/slicecache/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/slicecache/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/slicecache/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/slicecache/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/slicecache/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/slicecache/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/slicecache/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			cas.NodeID,
			fs.HasherNodeID,
			shell.NodeID,
			watcher.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}

	opener, err := graft.Dep[ports.IndexOpener](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	slicer, err := graft.Dep[ports.Slicer](ctx)
	if err != nil {
		return nil, err
	}

	watch, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, opener, hasher, slicer, watch, log, tracer), nil
}
