package graph

import "github.com/arven/codegraph/internal/types"

// StandardStore is the plain map-backed Store: owned strings, owned
// structs. This is the default back-end; simplest to reason about and
// fast enough for most project sizes.
type StandardStore struct {
	byFQN   map[string]types.Symbol
	byFile  map[string]types.FileRecord
	byName  map[string]map[string]struct{} // short name -> set of FQNs
	byTarget map[string][]types.Reference  // resolved target FQN -> referencing Reference
}

// NewStandardStore returns an empty StandardStore.
func NewStandardStore() *StandardStore {
	return &StandardStore{
		byFQN:    make(map[string]types.Symbol),
		byFile:   make(map[string]types.FileRecord),
		byName:   make(map[string]map[string]struct{}),
		byTarget: make(map[string][]types.Reference),
	}
}

func (s *StandardStore) PutFile(record types.FileRecord, symbols []types.Symbol) {
	if old, ok := s.byFile[record.Path]; ok {
		s.removeSymbolsAndRefs(old)
	}
	s.byFile[record.Path] = record
	for _, sym := range symbols {
		s.byFQN[sym.FQN] = sym
		set, ok := s.byName[sym.Name]
		if !ok {
			set = make(map[string]struct{})
			s.byName[sym.Name] = set
		}
		set[sym.FQN] = struct{}{}
	}
}

func (s *StandardStore) RemoveFile(path string) (types.FileRecord, bool) {
	old, ok := s.byFile[path]
	if !ok {
		return types.FileRecord{}, false
	}
	s.removeSymbolsAndRefs(old)
	delete(s.byFile, path)
	return old, true
}

func (s *StandardStore) removeSymbolsAndRefs(old types.FileRecord) {
	// Drop every symbol this file owned.
	for fqn, sym := range s.byFQN {
		if sym.FileID == old.ID {
			delete(s.byFQN, fqn)
			if set, ok := s.byName[sym.Name]; ok {
				delete(set, fqn)
				if len(set) == 0 {
					delete(s.byName, sym.Name)
				}
			}
		}
	}
	// Drop edges this file's references contributed to the reverse index.
	for target, refs := range s.byTarget {
		kept := refs[:0]
		for _, r := range refs {
			if r.SourceFileID != old.ID {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(s.byTarget, target)
		} else {
			s.byTarget[target] = kept
		}
	}
}

func (s *StandardStore) FileRecord(path string) (types.FileRecord, bool) {
	r, ok := s.byFile[path]
	return r, ok
}

func (s *StandardStore) AllFiles() []types.FileRecord {
	out := make([]types.FileRecord, 0, len(s.byFile))
	for _, r := range s.byFile {
		out = append(out, r)
	}
	return out
}

func (s *StandardStore) Symbol(fqn string) (types.Symbol, bool) {
	sym, ok := s.byFQN[fqn]
	return sym, ok
}

func (s *StandardStore) SymbolsByName(name string) []types.Symbol {
	set, ok := s.byName[name]
	if !ok {
		return nil
	}
	out := make([]types.Symbol, 0, len(set))
	for fqn := range set {
		if sym, ok := s.byFQN[fqn]; ok {
			out = append(out, sym)
		}
	}
	return out
}

func (s *StandardStore) AllSymbols() []types.Symbol {
	out := make([]types.Symbol, 0, len(s.byFQN))
	for _, sym := range s.byFQN {
		out = append(out, sym)
	}
	return out
}

func (s *StandardStore) SetReferences(path string, refs []types.Reference) {
	rec, ok := s.byFile[path]
	if !ok {
		return
	}
	for target, existing := range s.byTarget {
		kept := existing[:0]
		for _, r := range existing {
			if r.SourceFileID != rec.ID {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(s.byTarget, target)
		} else {
			s.byTarget[target] = kept
		}
	}
	rec.References = refs
	s.byFile[path] = rec
	for _, r := range refs {
		if r.Resolved {
			s.byTarget[r.ResolvedFQN] = append(s.byTarget[r.ResolvedFQN], r)
		}
	}
}

func (s *StandardStore) ReferencesTo(fqn string) []types.Reference {
	return s.byTarget[fqn]
}

func (s *StandardStore) FileCount() int   { return len(s.byFile) }
func (s *StandardStore) SymbolCount() int { return len(s.byFQN) }
