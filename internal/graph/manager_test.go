package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arven/codegraph/internal/config"
	cgerrors "github.com/arven/codegraph/internal/errors"
	"github.com/arven/codegraph/internal/parser"
)

const goFixtureSource = `package main

import "fmt"

func helloWorld() {
	fmt.Println("hello")
}

type Person struct {
	Name string
}

func NewPerson(name string) *Person {
	return &Person{Name: name}
}

func (p *Person) Greet() {
	fmt.Println("hi", p.Name)
}

func main() {
	p := NewPerson("Ada")
	p.Greet()
}
`

func newTestManager(t *testing.T, root string) *Manager {
	t.Helper()
	cfg := &config.Config{
		Project: config.Project{Root: root},
		Performance: config.Performance{
			ParallelFileWorkers: 2,
		},
	}
	return NewManager(cfg, parser.NewPool())
}

// writeFixture lays down a single Go source file under a fresh temp
// directory.
func writeFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir
}

func TestBuildExtractsSymbolsAndResolvesMethodCall(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	m := newTestManager(t, root)

	stats, err := m.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Greater(t, stats.SymbolsExtracted, 0)

	greet, err := m.FindDefinitions("Person.Greet")
	require.NoError(t, err)
	require.Len(t, greet, 1)
	assert.Equal(t, "Person.Greet", greet[0].FQN)
	assert.LessOrEqual(t, greet[0].Location.StartLine, greet[0].Location.EndLine)

	refs, err := m.FindReferences("Person.Greet")
	require.NoError(t, err)
	assert.NotEmpty(t, refs, "main's p.Greet() call site must resolve to Person.Greet")
}

func TestBuildNestingInvariant(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	m := newTestManager(t, root)

	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)

	method, err := m.FindDefinitions("Person.Greet")
	require.NoError(t, err)
	require.Len(t, method, 1)

	class, err := m.FindDefinitions("Person")
	require.NoError(t, err)
	require.Len(t, class, 1)

	// Go methods are declared outside their receiver type's extent, so the
	// parent link comes from the receiver, not lexical containment.
	assert.Equal(t, "Person", method[0].ParentFQN)
	assert.Greater(t, method[0].Location.StartLine, class[0].Location.EndLine)
}

func TestUpdateFileIsIdempotentOnUnchangedHash(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	m := newTestManager(t, root)
	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	before, err := m.FindDefinitions("Person.Greet")
	require.NoError(t, err)

	stats, err := m.UpdateFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, stats.SymbolsExtracted, "unchanged content hash must short-circuit re-extraction")

	after, err := m.FindDefinitions("Person.Greet")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateFilePreservesFQNAcrossBodyEdit(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	m := newTestManager(t, root)
	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	edited := goFixtureSource + "\n// a trailing comment changes the hash without renaming anything\n"
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	_, err = m.UpdateFile(context.Background(), path)
	require.NoError(t, err)

	greet, err := m.FindDefinitions("Person.Greet")
	require.NoError(t, err)
	require.Len(t, greet, 1)
	assert.Equal(t, "Person.Greet", greet[0].FQN)

	refs, err := m.FindReferences("Person.Greet")
	require.NoError(t, err)
	assert.NotEmpty(t, refs, "incoming references must remain resolved after a non-renaming edit")
}

func TestRemoveFileThenUpdateFileMatchesOriginalBuild(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	m := newTestManager(t, root)
	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, m.RemoveFile(path))

	_, err = m.FindDefinitions("Person.Greet")
	assert.Error(t, err, "removed file's symbols must disappear")

	_, err = m.UpdateFile(context.Background(), path)
	require.NoError(t, err)

	greet, err := m.FindDefinitions("Person.Greet")
	require.NoError(t, err)
	assert.Len(t, greet, 1)
}

func TestFileSkeletonIsSourceOrdered(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	m := newTestManager(t, root)
	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	skeleton, err := m.FileSkeleton(path)
	require.NoError(t, err)
	require.NotEmpty(t, skeleton)

	for i := 1; i < len(skeleton); i++ {
		assert.LessOrEqual(t, skeleton[i-1].Location.StartLine, skeleton[i].Location.StartLine,
			"file skeleton must be in source order")
	}
}

func TestFindDefinitionsNotFoundHasNoSuggestionsFarFromEveryName(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	m := newTestManager(t, root)
	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)

	_, err = m.FindDefinitions("ZzzCompletelyUnrelatedQueryXyz123")
	require.Error(t, err)
	var notFound *cgerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, notFound.Suggestions)
}

func TestBuildPrunesFilesDeletedSinceLastBuild(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	extra := filepath.Join(root, "extra.go")
	require.NoError(t, os.WriteFile(extra, []byte("package main\n\nfunc onlyInExtra() {}\n"), 0o644))

	m := newTestManager(t, root)
	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)

	_, err = m.FindDefinitions("onlyInExtra")
	require.NoError(t, err)

	require.NoError(t, os.Remove(extra))

	stats, err := m.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesRemoved)

	_, err = m.FindDefinitions("onlyInExtra")
	assert.Error(t, err, "a rebuild must drop files deleted since the previous build")
}

func TestBuildPrunesStaleRestoredEntries(t *testing.T) {
	root := writeFixture(t, goFixtureSource)
	extra := filepath.Join(root, "extra.go")
	require.NoError(t, os.WriteFile(extra, []byte("package main\n\nfunc onlyInExtra() {}\n"), 0o644))

	m := newTestManager(t, root)
	_, err := m.Build(context.Background(), root)
	require.NoError(t, err)
	snapshot := m.Snapshot()

	// Delete the file, then restore the stale snapshot into a fresh manager,
	// as a restart with a persisted cache does.
	require.NoError(t, os.Remove(extra))
	restored := newTestManager(t, root)
	restored.Restore(snapshot)

	_, err = restored.FindDefinitions("onlyInExtra")
	require.NoError(t, err, "the stale snapshot still carries the deleted file")

	_, err = restored.Build(context.Background(), root)
	require.NoError(t, err)

	_, err = restored.FindDefinitions("onlyInExtra")
	assert.Error(t, err, "the rebuild must prune snapshot entries whose file is gone")
}

func TestBuildIsDeterministicAcrossRuns(t *testing.T) {
	root := writeFixture(t, goFixtureSource)

	m1 := newTestManager(t, root)
	stats1, err := m1.Build(context.Background(), root)
	require.NoError(t, err)

	m2 := newTestManager(t, root)
	stats2, err := m2.Build(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, stats1.SymbolsExtracted, stats2.SymbolsExtracted)
	assert.Equal(t, stats1.ReferencesResolved, stats2.ReferencesResolved)
	assert.Equal(t, stats1.ReferencesUnresolved, stats2.ReferencesUnresolved)

	syms1, err := m1.FindDefinitions("Person.Greet")
	require.NoError(t, err)
	syms2, err := m2.FindDefinitions("Person.Greet")
	require.NoError(t, err)
	assert.Equal(t, syms1[0].FQN, syms2[0].FQN)
}
