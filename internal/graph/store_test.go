package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arven/codegraph/internal/types"
)

// newStores returns one instance of every Store backend, so every test in
// this file runs against both the standard and memory-optimized stores -
// the compact store must preserve all observable semantics of the
// standard one.
func newStores() map[string]Store {
	return map[string]Store{
		"standard": NewStandardStore(),
		"compact":  NewCompactStore(),
	}
}

func sym(fileID types.FileID, local uint32, fqn, name, path string) types.Symbol {
	return types.Symbol{
		ID:       types.NewCompositeSymbolID(fileID, local),
		Name:     name,
		FQN:      fqn,
		Kind:     types.SymbolFunction,
		Language: types.LanguageGo,
		FileID:   fileID,
		FilePath: path,
		Location: types.SymbolLocation{StartLine: 1, EndLine: 1},
	}
}

func TestStorePutFileAndLookups(t *testing.T) {
	for name, store := range newStores() {
		t.Run(name, func(t *testing.T) {
			syms := []types.Symbol{
				sym(1, 1, "pkg.Foo", "Foo", "a.go"),
				sym(1, 2, "pkg.Bar", "Bar", "a.go"),
			}
			rec := types.FileRecord{ID: 1, Path: "a.go", Language: types.LanguageGo}
			store.PutFile(rec, syms)

			got, ok := store.Symbol("pkg.Foo")
			require.True(t, ok)
			assert.Equal(t, "Foo", got.Name)

			_, ok = store.Symbol("pkg.Missing")
			assert.False(t, ok)

			byName := store.SymbolsByName("Bar")
			require.Len(t, byName, 1)
			assert.Equal(t, "pkg.Bar", byName[0].FQN)

			assert.Equal(t, 1, store.FileCount())
			assert.Equal(t, 2, store.SymbolCount())
			assert.Len(t, store.AllSymbols(), 2)
		})
	}
}

func TestStorePutFileReplacesPreviousSymbols(t *testing.T) {
	for name, store := range newStores() {
		t.Run(name, func(t *testing.T) {
			rec := types.FileRecord{ID: 1, Path: "a.go"}
			store.PutFile(rec, []types.Symbol{sym(1, 1, "pkg.Old", "Old", "a.go")})
			store.PutFile(rec, []types.Symbol{sym(1, 1, "pkg.New", "New", "a.go")})

			_, ok := store.Symbol("pkg.Old")
			assert.False(t, ok, "re-installing a file must drop its previous symbols")

			_, ok = store.Symbol("pkg.New")
			assert.True(t, ok)
			assert.Equal(t, 1, store.SymbolCount())
		})
	}
}

func TestStoreRemoveFile(t *testing.T) {
	for name, store := range newStores() {
		t.Run(name, func(t *testing.T) {
			rec := types.FileRecord{ID: 1, Path: "a.go"}
			store.PutFile(rec, []types.Symbol{sym(1, 1, "pkg.Foo", "Foo", "a.go")})

			removed, ok := store.RemoveFile("a.go")
			require.True(t, ok)
			assert.Equal(t, "a.go", removed.Path)

			_, ok = store.Symbol("pkg.Foo")
			assert.False(t, ok)
			assert.Equal(t, 0, store.FileCount())
			assert.Equal(t, 0, store.SymbolCount())

			_, ok = store.RemoveFile("a.go")
			assert.False(t, ok, "removing an unknown file reports not-ok")
		})
	}
}

func TestStoreSetReferencesAndReverseIndex(t *testing.T) {
	for name, store := range newStores() {
		t.Run(name, func(t *testing.T) {
			rec := types.FileRecord{ID: 1, Path: "a.go"}
			store.PutFile(rec, []types.Symbol{
				sym(1, 1, "pkg.Caller", "Caller", "a.go"),
				sym(1, 2, "pkg.Callee", "Callee", "a.go"),
			})

			refs := []types.Reference{
				{SourceFileID: 1, ResolvedFQN: "pkg.Callee", Resolved: true, Kind: types.ReferenceCall, EnclosingFQN: "pkg.Caller"},
			}
			store.SetReferences("a.go", refs)

			got := store.ReferencesTo("pkg.Callee")
			require.Len(t, got, 1)
			assert.Equal(t, "pkg.Caller", got[0].EnclosingFQN)

			assert.Empty(t, store.ReferencesTo("pkg.Caller"), "nothing targets the caller")
		})
	}
}

func TestStoreRemoveFileDropsOutgoingReverseEdges(t *testing.T) {
	for name, store := range newStores() {
		t.Run(name, func(t *testing.T) {
			store.PutFile(types.FileRecord{ID: 1, Path: "a.go"}, []types.Symbol{sym(1, 1, "pkg.Caller", "Caller", "a.go")})
			store.PutFile(types.FileRecord{ID: 2, Path: "b.go"}, []types.Symbol{sym(2, 1, "pkg.Callee", "Callee", "b.go")})
			store.SetReferences("a.go", []types.Reference{
				{SourceFileID: 1, ResolvedFQN: "pkg.Callee", Resolved: true, Kind: types.ReferenceCall, EnclosingFQN: "pkg.Caller"},
			})
			require.Len(t, store.ReferencesTo("pkg.Callee"), 1)

			_, ok := store.RemoveFile("a.go")
			require.True(t, ok)

			assert.Empty(t, store.ReferencesTo("pkg.Callee"), "removing the source file must drop its outgoing edges")
		})
	}
}
