package persistence

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arven/codegraph/internal/config"
	"github.com/arven/codegraph/internal/graph"
	"github.com/arven/codegraph/internal/parser"
)

func buildSnapshot(t *testing.T) (root string, entries []graph.FileEntry) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"),
		[]byte("package main\n\nfunc helper() {}\n\nfunc main() { helper() }\n"), 0o644))

	cfg := &config.Config{Project: config.Project{Root: root}}
	m := graph.NewManager(cfg, parser.NewPool())
	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)
	return root, m.Snapshot()
}

func TestSaveLoadRoundTripsSnapshot(t *testing.T) {
	_, entries := buildSnapshot(t)
	require.NotEmpty(t, entries)

	path := filepath.Join(t.TempDir(), "graph.cache")
	require.NoError(t, Save(path, entries))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(entries))
	assert.Equal(t, entries[0].Record.Path, loaded[0].Record.Path)
	assert.ElementsMatch(t, entries[0].Symbols, loaded[0].Symbols)
}

func TestRestoreRebuildsQueryableGraphFromSnapshot(t *testing.T) {
	root, entries := buildSnapshot(t)
	_ = root

	cfg := &config.Config{Project: config.Project{Root: root}}
	restored := graph.NewManager(cfg, parser.NewPool())
	restored.Restore(entries)

	defs, err := restored.FindDefinitions("main")
	require.NoError(t, err)
	require.Len(t, defs, 1)

	refs, err := restored.FindReferences("helper")
	require.NoError(t, err)
	assert.NotEmpty(t, refs, "restored graph must re-link references, not just replay raw data")
}

func TestLoadRejectsWrongMagicHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cache")
	require.NoError(t, os.WriteFile(path, []byte("NOTCGPH and some garbage"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestLoadRejectsFutureSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.cache")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.Write(magic[:])
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.BigEndian, schemaVersion+1))
	require.NoError(t, f.Close())

	_, err = Load(path)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.cache"))
	assert.Error(t, err)
}
