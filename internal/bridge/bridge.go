// Package bridge isolates the MCP tool server's handlers from the
// analysis lifecycle: one process-wide parser pool, graph manager, and
// initialization coordinator are constructed once during startup and
// handed to the server as explicit handles.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/arven/codegraph/internal/config"
	"github.com/arven/codegraph/internal/graph"
	"github.com/arven/codegraph/internal/initcoord"
	"github.com/arven/codegraph/internal/parser"
	"github.com/arven/codegraph/internal/persistence"
)

// Bridge bundles the process-wide analysis handles the server dispatches
// through. There is exactly one per running process, built by Init.
type Bridge struct {
	Config      *config.Config
	Pool        *parser.Pool
	Manager     *graph.Manager
	Coordinator *initcoord.Coordinator
}

var (
	mu       sync.Mutex
	instance *Bridge
)

// Init constructs the process-wide Bridge and starts the Initialization
// Coordinator's background build of cfg.Project.Root. Calling Init twice
// without an intervening Shutdown is a programmer error.
func Init(ctx context.Context, cfg *config.Config) (*Bridge, error) {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		return nil, fmt.Errorf("bridge: already initialized")
	}

	pool := parser.NewPool()
	manager := graph.NewManager(cfg, pool)

	if cfg.Graph.CacheFile != "" {
		if entries, err := persistence.Load(cfg.Graph.CacheFile); err == nil {
			manager.Restore(entries)
		}
		// A missing or version-mismatched cache file is not fatal: the
		// coordinator's full build below repopulates the graph from
		// scratch, and Shutdown will overwrite the stale file.
	}

	coord := initcoord.New(manager, cfg.Project.Root)
	coord.Start(ctx)

	b := &Bridge{Config: cfg, Pool: pool, Manager: manager, Coordinator: coord}
	instance = b
	return b, nil
}

// Current returns the process-wide Bridge, or nil if Init hasn't run.
func Current() *Bridge {
	mu.Lock()
	defer mu.Unlock()
	return instance
}

// Shutdown persists the graph cache (if configured) and clears the
// process-wide instance so a later Init can run again (as tests do).
func (b *Bridge) Shutdown() error {
	mu.Lock()
	defer mu.Unlock()

	var err error
	if b.Config.Graph.CacheFile != "" && b.Coordinator.IsReady() {
		err = persistence.Save(b.Config.Graph.CacheFile, b.Manager.Snapshot())
	}
	if instance == b {
		instance = nil
	}
	return err
}
