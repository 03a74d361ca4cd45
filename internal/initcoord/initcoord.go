// Package initcoord implements the initialization coordinator: the
// initial full-project build runs as a background task while the server
// accepts connections immediately, gating graph-dependent tool calls on a
// one-shot "graph ready" signal: a closed channel guarded by sync.Once.
package initcoord

import (
	"context"
	"sync"
	"time"

	cgerrors "github.com/arven/codegraph/internal/errors"
	"github.com/arven/codegraph/internal/graph"
	"github.com/arven/codegraph/internal/logging"
)

// Coordinator owns the lifecycle of the project's initial graph build and
// subsequent on-demand rebuilds triggered via update_code_graph.
type Coordinator struct {
	manager *graph.Manager
	root    string

	readyOnce sync.Once
	readyCh   chan struct{}

	mu        sync.RWMutex
	buildErr  error
	lastStats graph.Stats

	buildingMu sync.Mutex
	building   bool
}

// New creates a Coordinator for manager, whose initial build will walk
// root. The build does not start until Start is called.
func New(manager *graph.Manager, root string) *Coordinator {
	return &Coordinator{
		manager: manager,
		root:    root,
		readyCh: make(chan struct{}),
	}
}

// Start launches the initial build on its own goroutine and returns
// immediately: the server can start accepting connections before the
// build finishes. The initial build is not cancellable: it runs to
// completion or errors out, whatever happens to ctx.
func (c *Coordinator) Start(ctx context.Context) {
	go func() {
		logging.Info("initcoord", "starting initial build of %s", c.root)
		started := time.Now()
		stats, err := c.manager.Build(context.WithoutCancel(ctx), c.root)
		c.mu.Lock()
		c.buildErr = err
		c.lastStats = stats
		c.mu.Unlock()

		if err != nil {
			logging.Error("initcoord", "initial build failed after %s: %v", time.Since(started), err)
			return
		}
		logging.Info("initcoord", "initial build ready in %s: %d files, %d symbols",
			time.Since(started), stats.FilesIndexed, stats.SymbolsExtracted)
		c.readyOnce.Do(func() { close(c.readyCh) })
	}()
}

// Ready returns a channel that's closed once the initial build completes
// successfully. A failed initial build never closes it; callers should also
// check Err.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.readyCh
}

// IsReady reports whether the initial build has completed successfully,
// without blocking.
func (c *Coordinator) IsReady() bool {
	select {
	case <-c.readyCh:
		return true
	default:
		return false
	}
}

// Err returns the error of the most recent build (the initial build or the
// latest Rebuild), if it failed. Nil both before completion and on success.
func (c *Coordinator) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buildErr
}

// Stats returns the most recently completed build's summary (initial build
// or the latest Rebuild).
func (c *Coordinator) Stats() graph.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastStats
}

// AwaitReady blocks until the graph is ready, ctx is cancelled, or the
// initial build has already failed (in which case it returns the build
// error immediately rather than waiting forever).
func (c *Coordinator) AwaitReady(ctx context.Context) error {
	if c.IsReady() {
		return nil
	}
	if err := c.Err(); err != nil {
		return err
	}
	select {
	case <-c.readyCh:
		return nil
	case <-ctx.Done():
		return cgerrors.NewDeadlineExceededError("await graph ready", ctx.Err())
	}
}

// TriggerRebuild starts a fresh full-project build in the background and
// returns immediately with a status string ("rebuilding" or "already
// rebuilding"), matching update_code_graph's fire-and-forget contract. Safe
// to call before the initial build finishes; concurrent rebuilds are
// serialized to one in flight at a time.
func (c *Coordinator) TriggerRebuild(ctx context.Context, root string) string {
	c.buildingMu.Lock()
	if c.building {
		c.buildingMu.Unlock()
		return "already rebuilding"
	}
	c.building = true
	c.buildingMu.Unlock()

	if root == "" {
		root = c.root
	}
	// The rebuild outlives the call that triggered it.
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer func() {
			c.buildingMu.Lock()
			c.building = false
			c.buildingMu.Unlock()
		}()

		logging.Info("initcoord", "rebuild triggered for %s", root)
		stats, err := c.manager.Build(ctx, root)
		c.mu.Lock()
		c.lastStats = stats
		if err != nil {
			c.buildErr = err
		} else {
			c.buildErr = nil
		}
		c.mu.Unlock()

		if err != nil {
			logging.Error("initcoord", "rebuild of %s failed: %v", root, err)
			return
		}
		logging.Info("initcoord", "rebuild of %s complete: %d files, %d symbols", root, stats.FilesIndexed, stats.SymbolsExtracted)
		c.readyOnce.Do(func() { close(c.readyCh) })
	}()

	return "rebuilding"
}
