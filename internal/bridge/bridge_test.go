package bridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arven/codegraph/internal/config"
)

func newTestConfig(t *testing.T, cacheFile string) *config.Config {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	return &config.Config{
		Project: config.Project{Root: root},
		Graph:   config.Graph{CacheFile: cacheFile},
	}
}

func TestInitThenShutdownAllowsReinit(t *testing.T) {
	cfg := newTestConfig(t, "")

	b, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, b, Current())

	require.NoError(t, b.Shutdown())
	assert.Nil(t, Current())

	b2, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, b2, Current())
	require.NoError(t, b2.Shutdown())
}

func TestInitTwiceWithoutShutdownErrors(t *testing.T) {
	cfg := newTestConfig(t, "")
	b, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Shutdown()

	_, err = Init(context.Background(), cfg)
	assert.Error(t, err)
}

func TestShutdownPersistsCacheFileWhenConfigured(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "graph.cache")
	cfg := newTestConfig(t, cacheFile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b, err := Init(ctx, cfg)
	require.NoError(t, err)

	require.NoError(t, b.Coordinator.AwaitReady(ctx))
	require.NoError(t, b.Shutdown())

	info, err := os.Stat(cacheFile)
	require.NoError(t, err, "a ready build must persist its cache file on shutdown")
	assert.Greater(t, info.Size(), int64(0))
}

func TestShutdownSkipsPersistenceWhenBuildNeverBecameReady(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "graph.cache")
	cfg := newTestConfig(t, cacheFile)
	cfg.Project.Root = filepath.Join(t.TempDir(), "does-not-exist")

	b, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, b.Shutdown())

	_, statErr := os.Stat(cacheFile)
	assert.True(t, os.IsNotExist(statErr), "an unready build must not write a cache file")
}
