package graph

import (
	"strings"

	"github.com/arven/codegraph/internal/types"
)

// link resolves refs (all belonging to one file, of language lang) against
// store, applying the four-step policy in order: exact FQN, parent-scope
// walk, same-file short name, global unique name. Each step that finds more
// than one equally-eligible candidate stops and marks the reference
// ambiguous rather than picking arbitrarily.
func link(store Store, refs []types.Reference, sourcePath string, lang types.Language) []types.Reference {
	sep := lang.FQNSeparator()
	out := make([]types.Reference, len(refs))
	for i, r := range refs {
		out[i] = resolveOne(store, r, sourcePath, lang, sep)
	}
	return out
}

func resolveOne(store Store, r types.Reference, sourcePath string, lang types.Language, sep string) types.Reference {
	// (a) exact FQN.
	if sym, ok := store.Symbol(r.TargetName); ok {
		return resolved(r, sym)
	}

	// (b) parent-scope walk.
	for _, scope := range scopeChain(r.EnclosingFQN, sep) {
		candidate := scope + sep + r.TargetName
		if sym, ok := store.Symbol(candidate); ok {
			return resolved(r, sym)
		}
	}

	// (c) same-file short name.
	var sameFile []types.Symbol
	for _, sym := range store.SymbolsByName(r.TargetName) {
		if sym.FilePath == sourcePath {
			sameFile = append(sameFile, sym)
		}
	}
	switch len(sameFile) {
	case 1:
		return resolved(r, sameFile[0])
	default:
		if len(sameFile) > 1 {
			return ambiguous(r, sameFile)
		}
	}

	// (d) global unique name within the same language.
	var sameLang []types.Symbol
	for _, sym := range store.SymbolsByName(r.TargetName) {
		if sym.Language == lang {
			sameLang = append(sameLang, sym)
		}
	}
	switch len(sameLang) {
	case 1:
		return resolved(r, sameLang[0])
	case 0:
		return r
	default:
		return ambiguous(r, sameLang)
	}
}

func resolved(r types.Reference, target types.Symbol) types.Reference {
	r.Resolved = true
	r.Ambiguous = false
	r.ResolvedFQN = target.FQN
	r.TargetSymbolID = target.ID
	r.Candidates = nil
	return r
}

func ambiguous(r types.Reference, candidates []types.Symbol) types.Reference {
	r.Resolved = false
	r.Ambiguous = true
	r.ResolvedFQN = ""
	r.TargetSymbolID = types.CompositeSymbolID{}
	r.Candidates = make([]string, len(candidates))
	for i, c := range candidates {
		r.Candidates[i] = c.FQN
	}
	return r
}

// scopeChain returns fqn's ancestor scope prefixes, innermost first,
// stopping short of the empty (file-level) scope: step (d) handles the
// global case separately.
func scopeChain(fqn, sep string) []string {
	if fqn == "" || sep == "" {
		return nil
	}
	parts := strings.Split(fqn, sep)
	if len(parts) < 2 {
		return nil
	}
	chain := make([]string, 0, len(parts)-1)
	for k := len(parts) - 1; k >= 1; k-- {
		chain = append(chain, strings.Join(parts[:k], sep))
	}
	return chain
}
