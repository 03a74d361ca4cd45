// Package graph holds the graph manager: the project's symbol graph, its
// two interchangeable storage back-ends, and the deterministic linking pass
// that turns raw references into resolved edges. The graph is three jointly
// maintained indexes (by FQN, by file, by short name) plus a reverse
// referenced-by index derived from resolved references.
package graph

import "github.com/arven/codegraph/internal/types"

// Store is the storage contract both back-ends satisfy. The Graph Manager
// holds the exclusive writer lease (sync.RWMutex) around every mutating
// call; Store implementations themselves are not required to be
// concurrency-safe on their own.
type Store interface {
	// PutFile installs record and its symbols, replacing whatever was
	// previously stored for record.Path.
	PutFile(record types.FileRecord, symbols []types.Symbol)

	// RemoveFile deletes the file's record and symbols, returning the
	// removed record (if any existed).
	RemoveFile(path string) (types.FileRecord, bool)

	// FileRecord returns the current record for path.
	FileRecord(path string) (types.FileRecord, bool)

	// AllFiles returns every file record, in no particular order.
	AllFiles() []types.FileRecord

	// Symbol returns the symbol stored under the exact FQN.
	Symbol(fqn string) (types.Symbol, bool)

	// SymbolsByName returns every symbol whose short name matches, across
	// all files and languages.
	SymbolsByName(name string) []types.Symbol

	// AllSymbols returns every symbol currently stored, in no particular
	// order. Used for file skeletons and fuzzy NotFound suggestions.
	AllSymbols() []types.Symbol

	// SetReferences replaces the resolved reference list for path,
	// rebuilding the reverse (referenced-by) index entries it owns.
	SetReferences(path string, refs []types.Reference)

	// ReferencesTo returns every currently-stored Reference whose
	// resolved target is fqn, via the reverse index.
	ReferencesTo(fqn string) []types.Reference

	// FileCount and SymbolCount support build Stats reporting.
	FileCount() int
	SymbolCount() int
}
