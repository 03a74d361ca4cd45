package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arven/codegraph/internal/types"
)

// buildLinkerStore installs a small class-with-methods graph:
// Test.MethodA (the caller) and Test.MethodB (the callee).
func buildLinkerStore(t *testing.T) Store {
	t.Helper()
	store := NewStandardStore()
	store.PutFile(types.FileRecord{ID: 1, Path: "test.cs", Language: types.LanguageCSharp}, []types.Symbol{
		{ID: types.NewCompositeSymbolID(1, 1), Name: "Test", FQN: "Test", Kind: types.SymbolClass, Language: types.LanguageCSharp, FileID: 1, FilePath: "test.cs"},
		{ID: types.NewCompositeSymbolID(1, 2), Name: "MethodA", FQN: "Test.MethodA", ParentFQN: "Test", Kind: types.SymbolMethod, Language: types.LanguageCSharp, FileID: 1, FilePath: "test.cs"},
		{ID: types.NewCompositeSymbolID(1, 3), Name: "MethodB", FQN: "Test.MethodB", ParentFQN: "Test", Kind: types.SymbolMethod, Language: types.LanguageCSharp, FileID: 1, FilePath: "test.cs"},
	})
	return store
}

func TestLinkParentScopeResolution(t *testing.T) {
	store := buildLinkerStore(t)
	refs := []types.Reference{
		{SourceFileID: 1, TargetName: "MethodB", Kind: types.ReferenceCall, EnclosingFQN: "Test.MethodA"},
	}
	linked := link(store, refs, "test.cs", types.LanguageCSharp)

	require.Len(t, linked, 1)
	assert.True(t, linked[0].Resolved)
	assert.Equal(t, "Test.MethodB", linked[0].ResolvedFQN)
}

func TestLinkExactFQNTakesPriority(t *testing.T) {
	store := buildLinkerStore(t)
	refs := []types.Reference{
		{SourceFileID: 1, TargetName: "Test.MethodB", Kind: types.ReferenceCall, EnclosingFQN: "Test.MethodA"},
	}
	linked := link(store, refs, "test.cs", types.LanguageCSharp)
	assert.True(t, linked[0].Resolved)
	assert.Equal(t, "Test.MethodB", linked[0].ResolvedFQN)
}

func TestLinkGlobalUniqueNameFallback(t *testing.T) {
	store := NewStandardStore()
	store.PutFile(types.FileRecord{ID: 1, Path: "a.go"}, []types.Symbol{
		{ID: types.NewCompositeSymbolID(1, 1), Name: "Helper", FQN: "pkg.Helper", Kind: types.SymbolFunction, Language: types.LanguageGo, FileID: 1, FilePath: "a.go"},
	})
	store.PutFile(types.FileRecord{ID: 2, Path: "b.go"}, []types.Symbol{
		{ID: types.NewCompositeSymbolID(2, 1), Name: "Caller", FQN: "pkg2.Caller", Kind: types.SymbolFunction, Language: types.LanguageGo, FileID: 2, FilePath: "b.go"},
	})

	refs := []types.Reference{
		{SourceFileID: 2, TargetName: "Helper", Kind: types.ReferenceCall, EnclosingFQN: "pkg2.Caller"},
	}
	linked := link(store, refs, "b.go", types.LanguageGo)
	require.True(t, linked[0].Resolved)
	assert.Equal(t, "pkg.Helper", linked[0].ResolvedFQN)
}

func TestLinkAmbiguousNameStaysUnresolvedWithCandidates(t *testing.T) {
	store := NewStandardStore()
	store.PutFile(types.FileRecord{ID: 1, Path: "a.go"}, []types.Symbol{
		{ID: types.NewCompositeSymbolID(1, 1), Name: "Process", FQN: "pkgA.Process", Kind: types.SymbolFunction, Language: types.LanguageGo, FileID: 1, FilePath: "a.go"},
	})
	store.PutFile(types.FileRecord{ID: 2, Path: "b.go"}, []types.Symbol{
		{ID: types.NewCompositeSymbolID(2, 1), Name: "Process", FQN: "pkgB.Process", Kind: types.SymbolFunction, Language: types.LanguageGo, FileID: 2, FilePath: "b.go"},
	})
	store.PutFile(types.FileRecord{ID: 3, Path: "c.go"}, []types.Symbol{
		{ID: types.NewCompositeSymbolID(3, 1), Name: "Caller", FQN: "pkgC.Caller", Kind: types.SymbolFunction, Language: types.LanguageGo, FileID: 3, FilePath: "c.go"},
	})

	refs := []types.Reference{
		{SourceFileID: 3, TargetName: "Process", Kind: types.ReferenceCall, EnclosingFQN: "pkgC.Caller"},
	}
	linked := link(store, refs, "c.go", types.LanguageGo)

	assert.False(t, linked[0].Resolved, "ambiguous global candidates must never resolve arbitrarily")
	assert.True(t, linked[0].Ambiguous)
	assert.ElementsMatch(t, []string{"pkgA.Process", "pkgB.Process"}, linked[0].Candidates)
}

func TestLinkUnresolvedWhenNoCandidateExists(t *testing.T) {
	store := buildLinkerStore(t)
	refs := []types.Reference{
		{SourceFileID: 1, TargetName: "NoSuchThing", Kind: types.ReferenceCall, EnclosingFQN: "Test.MethodA"},
	}
	linked := link(store, refs, "test.cs", types.LanguageCSharp)
	assert.False(t, linked[0].Resolved)
	assert.False(t, linked[0].Ambiguous)
}

func TestLinkSameFileShortNameBeatsCrossFileAmbiguity(t *testing.T) {
	// b.go defines its own "Run" as well; were step (d) reached, the two
	// same-language Runs would be ambiguous and block resolution. The
	// same-file short-name step (c) must resolve a.go's own reference to
	// a.go's own Run before step (d) ever runs.
	store := NewStandardStore()
	store.PutFile(types.FileRecord{ID: 1, Path: "a.go"}, []types.Symbol{
		{ID: types.NewCompositeSymbolID(1, 1), Name: "Run", FQN: "a.Run", Kind: types.SymbolFunction, Language: types.LanguageGo, FileID: 1, FilePath: "a.go"},
		{ID: types.NewCompositeSymbolID(1, 2), Name: "Caller", FQN: "Box.Caller", ParentFQN: "Box", Kind: types.SymbolFunction, Language: types.LanguageGo, FileID: 1, FilePath: "a.go"},
	})
	store.PutFile(types.FileRecord{ID: 2, Path: "b.go"}, []types.Symbol{
		{ID: types.NewCompositeSymbolID(2, 1), Name: "Run", FQN: "b.Run", Kind: types.SymbolFunction, Language: types.LanguageGo, FileID: 2, FilePath: "b.go"},
	})

	refs := []types.Reference{
		{SourceFileID: 1, TargetName: "Run", Kind: types.ReferenceCall, EnclosingFQN: "Box.Caller"},
	}
	linked := link(store, refs, "a.go", types.LanguageGo)
	require.True(t, linked[0].Resolved)
	assert.Equal(t, "a.Run", linked[0].ResolvedFQN)
}
