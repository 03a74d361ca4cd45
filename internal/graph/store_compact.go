package graph

import "github.com/arven/codegraph/internal/types"

// compactSymbol is a symbol record whose name, FQN and parent FQN are
// replaced by interned IDs, packed contiguously in CompactStore.symbols.
type compactSymbol struct {
	id          types.CompositeSymbolID
	nameID      uint32
	fqnID       uint32
	parentFQNID uint32 // noParent when the symbol is file-scoped
	kind        types.SymbolKind
	language    types.Language
	fileID      types.FileID
	location    types.SymbolLocation
	signature   string
	docstring   string
	exported    bool
}

// noParent is the sentinel parentFQNID value meaning "file scope, no
// enclosing symbol". The interner hands out IDs counting up from zero, so
// a real FQN can never collide with it.
const noParent = ^uint32(0)

// CompactStore is the memory-optimized Store back-end: interned strings
// plus contiguous symbol records. It must preserve every observable
// behavior of StandardStore; only the internal representation differs.
type CompactStore struct {
	strings *stringInterner

	fqnIndex map[uint32]int // fqnID -> index into symbols
	symbols  []compactSymbol

	byFile   map[string]types.FileRecord
	byName   map[string]map[string]struct{}
	byTarget map[string][]types.Reference
}

// NewCompactStore returns an empty CompactStore.
func NewCompactStore() *CompactStore {
	return &CompactStore{
		strings:  newStringInterner(),
		fqnIndex: make(map[uint32]int),
		byFile:   make(map[string]types.FileRecord),
		byName:   make(map[string]map[string]struct{}),
		byTarget: make(map[string][]types.Reference),
	}
}

func (c *CompactStore) PutFile(record types.FileRecord, symbols []types.Symbol) {
	if old, ok := c.byFile[record.Path]; ok {
		c.removeFileSymbols(old)
	}
	c.byFile[record.Path] = record

	for _, sym := range symbols {
		fqnID := c.strings.intern(sym.FQN)
		nameID := c.strings.intern(sym.Name)
		parentID := noParent
		if sym.ParentFQN != "" {
			parentID = c.strings.intern(sym.ParentFQN)
		}

		cs := compactSymbol{
			id:          sym.ID,
			nameID:      nameID,
			fqnID:       fqnID,
			parentFQNID: parentID,
			kind:        sym.Kind,
			language:    sym.Language,
			fileID:      sym.FileID,
			location:    sym.Location,
			signature:   sym.Signature,
			docstring:   sym.Docstring,
			exported:    sym.Exported,
		}

		if idx, exists := c.fqnIndex[fqnID]; exists {
			c.symbols[idx] = cs
		} else {
			c.fqnIndex[fqnID] = len(c.symbols)
			c.symbols = append(c.symbols, cs)
		}

		set, ok := c.byName[sym.Name]
		if !ok {
			set = make(map[string]struct{})
			c.byName[sym.Name] = set
		}
		set[sym.FQN] = struct{}{}
	}
}

func (c *CompactStore) removeFileSymbols(old types.FileRecord) {
	kept := c.symbols[:0]
	newIndex := make(map[uint32]int, len(c.fqnIndex))
	for _, cs := range c.symbols {
		if cs.fileID == old.ID {
			name := c.strings.lookup(cs.nameID)
			fqn := c.strings.lookup(cs.fqnID)
			if set, ok := c.byName[name]; ok {
				delete(set, fqn)
				if len(set) == 0 {
					delete(c.byName, name)
				}
			}
			continue
		}
		newIndex[cs.fqnID] = len(kept)
		kept = append(kept, cs)
	}
	c.symbols = kept
	c.fqnIndex = newIndex

	for target, refs := range c.byTarget {
		out := refs[:0]
		for _, r := range refs {
			if r.SourceFileID != old.ID {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			delete(c.byTarget, target)
		} else {
			c.byTarget[target] = out
		}
	}
}

func (c *CompactStore) RemoveFile(path string) (types.FileRecord, bool) {
	old, ok := c.byFile[path]
	if !ok {
		return types.FileRecord{}, false
	}
	c.removeFileSymbols(old)
	delete(c.byFile, path)
	return old, true
}

func (c *CompactStore) toSymbol(cs compactSymbol) types.Symbol {
	sym := types.Symbol{
		ID:        cs.id,
		Name:      c.strings.lookup(cs.nameID),
		FQN:       c.strings.lookup(cs.fqnID),
		Kind:      cs.kind,
		Language:  cs.language,
		FileID:    cs.fileID,
		Location:  cs.location,
		Signature: cs.signature,
		Docstring: cs.docstring,
		Exported:  cs.exported,
	}
	if cs.parentFQNID != noParent {
		sym.ParentFQN = c.strings.lookup(cs.parentFQNID)
	}
	for path, rec := range c.byFile {
		if rec.ID == cs.fileID {
			sym.FilePath = path
			break
		}
	}
	return sym
}

func (c *CompactStore) FileRecord(path string) (types.FileRecord, bool) {
	r, ok := c.byFile[path]
	return r, ok
}

func (c *CompactStore) AllFiles() []types.FileRecord {
	out := make([]types.FileRecord, 0, len(c.byFile))
	for _, r := range c.byFile {
		out = append(out, r)
	}
	return out
}

func (c *CompactStore) Symbol(fqn string) (types.Symbol, bool) {
	id, ok := c.strings.find(fqn)
	if !ok {
		return types.Symbol{}, false
	}
	idx, ok := c.fqnIndex[id]
	if !ok {
		return types.Symbol{}, false
	}
	return c.toSymbol(c.symbols[idx]), true
}

func (c *CompactStore) SymbolsByName(name string) []types.Symbol {
	set, ok := c.byName[name]
	if !ok {
		return nil
	}
	out := make([]types.Symbol, 0, len(set))
	for fqn := range set {
		if sym, ok := c.Symbol(fqn); ok {
			out = append(out, sym)
		}
	}
	return out
}

func (c *CompactStore) AllSymbols() []types.Symbol {
	out := make([]types.Symbol, 0, len(c.symbols))
	for _, cs := range c.symbols {
		out = append(out, c.toSymbol(cs))
	}
	return out
}

func (c *CompactStore) SetReferences(path string, refs []types.Reference) {
	rec, ok := c.byFile[path]
	if !ok {
		return
	}
	for target, existing := range c.byTarget {
		out := existing[:0]
		for _, r := range existing {
			if r.SourceFileID != rec.ID {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			delete(c.byTarget, target)
		} else {
			c.byTarget[target] = out
		}
	}
	rec.References = refs
	c.byFile[path] = rec
	for _, r := range refs {
		if r.Resolved {
			c.byTarget[r.ResolvedFQN] = append(c.byTarget[r.ResolvedFQN], r)
		}
	}
}

func (c *CompactStore) ReferencesTo(fqn string) []types.Reference {
	return c.byTarget[fqn]
}

func (c *CompactStore) FileCount() int   { return len(c.byFile) }
func (c *CompactStore) SymbolCount() int { return len(c.symbols) }
