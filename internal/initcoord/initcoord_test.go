package initcoord

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arven/codegraph/internal/config"
	"github.com/arven/codegraph/internal/graph"
	"github.com/arven/codegraph/internal/parser"
)

// TestMain verifies the Coordinator leaves no goroutine running behind it
// once every test in this package has exercised Start/TriggerRebuild -
// the one-shot build goroutines in initcoord.go must always return.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	return dir
}

func newTestCoordinator(t *testing.T, root string) *Coordinator {
	t.Helper()
	cfg := &config.Config{Project: config.Project{Root: root}}
	manager := graph.NewManager(cfg, parser.NewPool())
	return New(manager, root)
}

func TestStartClosesReadyOnSuccessfulBuild(t *testing.T) {
	root := newTestRoot(t)
	c := newTestCoordinator(t, root)

	assert.False(t, c.IsReady())

	c.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.AwaitReady(ctx))
	assert.True(t, c.IsReady())
	assert.NoError(t, c.Err())
	assert.Equal(t, 1, c.Stats().FilesIndexed)
}

func TestAwaitReadyRespectsContextCancellation(t *testing.T) {
	root := newTestRoot(t)
	c := newTestCoordinator(t, root)
	// Deliberately do not call Start: the ready channel never closes.

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.AwaitReady(ctx)
	assert.Error(t, err)
}

func TestTriggerRebuildSerializesConcurrentCalls(t *testing.T) {
	root := newTestRoot(t)
	c := newTestCoordinator(t, root)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	require.NoError(t, c.AwaitReady(ctx))

	status := c.TriggerRebuild(ctx, root)
	assert.Equal(t, "rebuilding", status)

	second := c.TriggerRebuild(ctx, root)
	assert.Equal(t, "already rebuilding", second)

	require.Eventually(t, func() bool {
		c.buildingMu.Lock()
		defer c.buildingMu.Unlock()
		return !c.building
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAwaitReadyReturnsBuildErrorImmediately(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")
	c := newTestCoordinator(t, root)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)

	require.Eventually(t, func() bool {
		return c.Err() != nil
	}, 5*time.Second, 10*time.Millisecond)

	err := c.AwaitReady(context.Background())
	assert.Error(t, err)
	assert.False(t, c.IsReady())
}
