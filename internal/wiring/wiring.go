// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/slicecache/internal/adapters/cas"
	_ "go.trai.ch/slicecache/internal/adapters/config"
	_ "go.trai.ch/slicecache/internal/adapters/fetch"
	_ "go.trai.ch/slicecache/internal/adapters/fs"
	_ "go.trai.ch/slicecache/internal/adapters/logger"
	_ "go.trai.ch/slicecache/internal/adapters/shell"
	_ "go.trai.ch/slicecache/internal/adapters/telemetry"
	_ "go.trai.ch/slicecache/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/slicecache/internal/app"
)
