package graph

import "github.com/arven/codegraph/internal/types"

// FileEntry is one file's full, self-contained state: its record plus the
// Symbol objects the record's Symbols ID list refers to. Snapshot/Restore
// use it to move the whole graph across a persistence boundary without
// reaching into Store internals.
type FileEntry struct {
	Record  types.FileRecord
	Symbols []types.Symbol
}

// Snapshot returns every file currently held by the graph, suitable for
// serialization by internal/persistence.
func (m *Manager) Snapshot() []FileEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byFile := make(map[types.FileID][]types.Symbol)
	for _, sym := range m.store.AllSymbols() {
		byFile[sym.FileID] = append(byFile[sym.FileID], sym)
	}

	files := m.store.AllFiles()
	out := make([]FileEntry, 0, len(files))
	for _, rec := range files {
		out = append(out, FileEntry{Record: rec, Symbols: byFile[rec.ID]})
	}
	return out
}

// Restore installs entries wholesale (e.g. loaded from a persisted cache)
// and re-links the graph once at the end, exactly like Build's final pass.
// Each file is installed transactionally via Store.PutFile, matching the
// per-file install discipline Build and UpdateFile use.
func (m *Manager) Restore(entries []FileEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		m.fileIDs[e.Record.Path] = e.Record.ID
		if e.Record.ID > m.nextFileID {
			m.nextFileID = e.Record.ID
		}
		rec := e.Record
		rec.Symbols = symbolIDs(e.Symbols)
		m.store.PutFile(rec, e.Symbols)
	}
	m.relinkAllLocked()
}
