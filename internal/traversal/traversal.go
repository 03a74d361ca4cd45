// Package traversal implements bounded BFS over the graph's resolved
// edges, used for get_symbol_subgraph and get_related_files_skeleton.
// Visited nodes are deduplicated and emitted in first-visit order.
package traversal

import (
	"sort"

	cgerrors "github.com/arven/codegraph/internal/errors"
	"github.com/arven/codegraph/internal/graph"
	"github.com/arven/codegraph/internal/types"
)

// Edge is one resolved reference rendered as a graph edge for output.
type Edge struct {
	Source string
	Target string
	Kind   types.ReferenceKind
}

// Result is subgraph()'s output: the bounded neighborhood around a seed
// symbol.
type Result struct {
	Nodes []types.Symbol
	Edges []Edge
}

// defaultEdgeKinds is every kind a Reference can resolve to; subgraph
// follows all of them unless the caller restricts the set.
var defaultEdgeKinds = map[types.ReferenceKind]bool{
	types.ReferenceCall:        true,
	types.ReferenceUse:         true,
	types.ReferenceImport:      true,
	types.ReferenceExtends:     true,
	types.ReferenceImplements:  true,
	types.ReferenceInstantiate: true,
}

func edgeKindSet(kinds []types.ReferenceKind) map[types.ReferenceKind]bool {
	if len(kinds) == 0 {
		return defaultEdgeKinds
	}
	set := make(map[types.ReferenceKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

// neighbor is one edge discovered while expanding a node, in the direction
// it was found.
type neighbor struct {
	fqn  string
	kind types.ReferenceKind
	from string
	to   string
}

// Subgraph performs bounded BFS from fqn up to depth hops, following both
// forward (uses) and reverse (used_by) edges whose kind is in edgeKinds
// (nil/empty means every resolved kind). Returns NotFound if fqn isn't a
// known symbol.
func Subgraph(store graph.Store, fqn string, depth int, edgeKinds []types.ReferenceKind) (Result, error) {
	seed, ok := store.Symbol(fqn)
	if !ok {
		return Result{}, cgerrors.NewNotFoundError("symbol", fqn, nil)
	}
	allowed := edgeKindSet(edgeKinds)

	visited := map[string]bool{fqn: true}
	order := []string{fqn}
	var edges []Edge

	type queued struct {
		fqn string
		d   int
	}
	queue := []queued{{fqn: fqn, d: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.d >= depth {
			continue
		}

		for _, n := range expand(store, cur.fqn, allowed) {
			edges = append(edges, Edge{Source: n.from, Target: n.to, Kind: n.kind})
			if visited[n.fqn] {
				continue
			}
			visited[n.fqn] = true
			order = append(order, n.fqn)
			queue = append(queue, queued{fqn: n.fqn, d: cur.d + 1})
		}
	}

	nodes := make([]types.Symbol, 0, len(order))
	nodes = append(nodes, seed)
	for _, f := range order[1:] {
		if sym, ok := store.Symbol(f); ok {
			nodes = append(nodes, sym)
		}
	}

	return Result{Nodes: nodes, Edges: dedupEdges(edges)}, nil
}

// expand returns every neighbor reachable from fqn in one hop: forward
// (fqn's own outgoing references) and reverse (every stored reference, from
// any file, whose resolved target is fqn).
func expand(store graph.Store, fqn string, allowed map[types.ReferenceKind]bool) []neighbor {
	var out []neighbor

	if sym, ok := store.Symbol(fqn); ok {
		if rec, ok := store.FileRecord(sym.FilePath); ok {
			for _, ref := range rec.References {
				if !ref.Resolved || !allowed[ref.Kind] {
					continue
				}
				if ref.EnclosingFQN != fqn {
					continue
				}
				out = append(out, neighbor{fqn: ref.ResolvedFQN, kind: ref.Kind, from: fqn, to: ref.ResolvedFQN})
			}
		}
	}

	for _, ref := range store.ReferencesTo(fqn) {
		if !allowed[ref.Kind] {
			continue
		}
		out = append(out, neighbor{fqn: ref.EnclosingFQN, kind: ref.Kind, from: ref.EnclosingFQN, to: fqn})
	}

	return out
}

func dedupEdges(edges []Edge) []Edge {
	seen := make(map[Edge]bool, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// FileSkeleton is one file's entry in a RelatedFiles result.
type FileSkeleton struct {
	Path    string
	Symbols []types.Symbol
}

// RelatedFiles computes related_files_skeleton(path, depth): the union of
// subgraph(s, depth) nodes over every symbol defined in path, grouped by
// file and ordered by decreasing hit-symbol count then lexicographically.
func RelatedFiles(store graph.Store, path string, depth int) ([]FileSkeleton, error) {
	rec, ok := store.FileRecord(path)
	if !ok {
		return nil, cgerrors.NewNotFoundError("file", path, nil)
	}

	seeds := make([]string, 0)
	for _, sym := range store.AllSymbols() {
		if sym.FileID == rec.ID {
			seeds = append(seeds, sym.FQN)
		}
	}

	hitsByFile := make(map[string]map[string]types.Symbol)
	for _, seed := range seeds {
		sub, err := Subgraph(store, seed, depth, nil)
		if err != nil {
			continue
		}
		for _, node := range sub.Nodes {
			set, ok := hitsByFile[node.FilePath]
			if !ok {
				set = make(map[string]types.Symbol)
				hitsByFile[node.FilePath] = set
			}
			set[node.FQN] = node
		}
	}

	out := make([]FileSkeleton, 0, len(hitsByFile))
	for p, set := range hitsByFile {
		syms := make([]types.Symbol, 0, len(set))
		for _, s := range set {
			syms = append(syms, s)
		}
		sort.SliceStable(syms, func(i, j int) bool {
			if syms[i].Location.StartLine != syms[j].Location.StartLine {
				return syms[i].Location.StartLine < syms[j].Location.StartLine
			}
			return syms[i].Location.EndLine > syms[j].Location.EndLine
		})
		out = append(out, FileSkeleton{Path: p, Symbols: syms})
	}

	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Symbols) != len(out[j].Symbols) {
			return len(out[i].Symbols) > len(out[j].Symbols)
		}
		return out[i].Path < out[j].Path
	})

	return out, nil
}
