// Package extractor turns parser pool query matches into Symbols and
// References. It assembles fully-qualified names by nesting each
// definition inside the innermost other definition whose node range
// contains it, and resolves each reference's enclosing symbol the same
// way. The capture convention it consumes is documented in
// internal/queries (definition.*/reference.*/scope.*).
package extractor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/arven/codegraph/internal/parser"
	"github.com/arven/codegraph/internal/types"
)

const (
	defPrefix   = "definition."
	refPrefix   = "reference."
	scopePrefix = "scope."
	nameCapture = "name"
)

type rawDef struct {
	kind  types.SymbolKind
	node  *tree_sitter.Node
	name  string
	scope string // parent scope name from a scope.* capture in the same match, e.g. a Go method's receiver type
}

type rawRef struct {
	kind types.ReferenceKind
	node *tree_sitter.Node
	name string
}

// Result is everything the Context Extractor produces for one file.
type Result struct {
	Symbols    []types.Symbol
	References []types.Reference
}

// symbolKindOf maps a query catalog suffix (the text after "definition.")
// onto the language-agnostic SymbolKind vocabulary.
var symbolKindOf = map[string]types.SymbolKind{
	"function":    types.SymbolFunction,
	"method":      types.SymbolMethod,
	"class":       types.SymbolClass,
	"interface":   types.SymbolInterface,
	"struct":      types.SymbolStruct,
	"enum":        types.SymbolEnum,
	"enum_member": types.SymbolEnumMember,
	"field":       types.SymbolField,
	"property":    types.SymbolProperty,
	"variable":    types.SymbolVariable,
	"constant":    types.SymbolConstant,
	"parameter":   types.SymbolParameter,
	"module":      types.SymbolModule,
	"namespace":   types.SymbolNamespace,
	"constructor": types.SymbolConstructor,
	"trait":       types.SymbolTrait,
	"impl":        types.SymbolImpl,
	"type":        types.SymbolType,
	"type_alias":  types.SymbolTypeAlias,
	"macro":       types.SymbolMacro,
}

var referenceKindOf = map[string]types.ReferenceKind{
	"call":        types.ReferenceCall,
	"use":         types.ReferenceUse,
	"import":      types.ReferenceImport,
	"extends":     types.ReferenceExtends,
	"implements":  types.ReferenceImplements,
	"instantiate": types.ReferenceInstantiate,
}

// Extract builds the Symbol and Reference set for one parsed file. nextLocalID
// is the first LocalSymbolID to hand out; every current caller passes 1, so a
// file's symbols are numbered from 1 again on each extraction.
func Extract(file *types.ParsedFile, fileID types.FileID, matches []parser.QueryMatch, nextLocalID uint32) Result {
	var defs []rawDef
	var refs []rawRef

	for _, m := range matches {
		var capturedNode *tree_sitter.Node
		var capturedTag string
		var name string
		var scope string

		for _, c := range m.Captures {
			switch {
			case c.Name == nameCapture:
				name = c.Node.Utf8Text(file.Content)
			case strings.HasPrefix(c.Name, defPrefix):
				capturedNode = c.Node
				capturedTag = strings.TrimPrefix(c.Name, defPrefix)
			case strings.HasPrefix(c.Name, refPrefix):
				capturedNode = c.Node
				capturedTag = strings.TrimPrefix(c.Name, refPrefix)
			case strings.HasPrefix(c.Name, scopePrefix):
				// A scope capture inside a definition match names the
				// enclosing scope explicitly, for declarations the grammar
				// places outside their owner's extent (a Go method's
				// receiver type). Containment handles everything else.
				scope = c.Node.Utf8Text(file.Content)
			}
		}

		if capturedNode == nil {
			continue
		}

		if kind, ok := symbolKindOf[capturedTag]; ok {
			if name == "" {
				continue
			}
			defs = append(defs, rawDef{kind: kind, node: capturedNode, name: name, scope: scope})
			continue
		}
		if kind, ok := referenceKindOf[capturedTag]; ok {
			if name == "" {
				continue
			}
			refs = append(refs, rawRef{kind: kind, node: capturedNode, name: name})
		}
	}

	symbols := make([]types.Symbol, len(defs))
	localID := nextLocalID
	for i, d := range defs {
		startPos := d.node.StartPosition()
		endPos := d.node.EndPosition()
		symbols[i] = types.Symbol{
			ID:       types.NewCompositeSymbolID(fileID, localID),
			Name:     d.name,
			Kind:     d.kind,
			Language: file.Language,
			FileID:   fileID,
			FilePath: file.Path,
			Location: types.SymbolLocation{
				StartLine: int(startPos.Row) + 1,
				EndLine:   int(endPos.Row) + 1,
				StartCol:  int(startPos.Column) + 1,
				EndCol:    int(endPos.Column) + 1,
			},
			Exported:  isExported(file.Language, d.name),
			Signature: headerLine(file.Content, d.node),
			Docstring: leadingComment(file.Content, int(startPos.Row), file.Language.LineCommentPrefix()),
		}
		localID++
	}

	parentIdx := make([]int, len(defs))
	for i, d := range defs {
		parentIdx[i] = innermostContainer(defs, i, d.node)
	}

	sep := file.Language.FQNSeparator()
	fqnCache := make([]string, len(defs))
	var resolveFQN func(i int) string
	resolveFQN = func(i int) string {
		if fqnCache[i] != "" {
			return fqnCache[i]
		}
		if defs[i].scope != "" {
			fqnCache[i] = defs[i].scope + sep + symbols[i].Name
			return fqnCache[i]
		}
		if parentIdx[i] < 0 {
			fqnCache[i] = symbols[i].Name
			return fqnCache[i]
		}
		parentFQN := resolveFQN(parentIdx[i])
		fqnCache[i] = parentFQN + sep + symbols[i].Name
		return fqnCache[i]
	}

	for i := range defs {
		symbols[i].FQN = resolveFQN(i)
		switch {
		case defs[i].scope != "":
			symbols[i].ParentFQN = defs[i].scope
		case parentIdx[i] >= 0:
			symbols[i].ParentFQN = fqnCache[parentIdx[i]]
		}
	}

	references := make([]types.Reference, len(refs))
	for i, r := range refs {
		startPos := r.node.StartPosition()
		endPos := r.node.EndPosition()
		enclosing := ""
		if p := innermostContainerForNode(defs, r.node); p >= 0 {
			enclosing = fqnCache[p]
		}
		references[i] = types.Reference{
			SourceFileID:   fileID,
			SourceFilePath: file.Path,
			TargetName:     r.name,
			Kind:           r.kind,
			EnclosingFQN:   enclosing,
			Location: types.SymbolLocation{
				StartLine: int(startPos.Row) + 1,
				EndLine:   int(endPos.Row) + 1,
				StartCol:  int(startPos.Column) + 1,
				EndCol:    int(endPos.Column) + 1,
			},
		}
	}

	return Result{Symbols: symbols, References: references}
}

// innermostContainer finds the index, among defs, of the smallest-range
// definition that strictly contains defs[self]'s node, excluding self.
func innermostContainer(defs []rawDef, self int, node *tree_sitter.Node) int {
	best := -1
	var bestSpan uint
	target := node
	for i, d := range defs {
		if i == self {
			continue
		}
		if !contains(d.node, target) {
			continue
		}
		span := d.node.EndByte() - d.node.StartByte()
		if best < 0 || span < bestSpan {
			best = i
			bestSpan = span
		}
	}
	return best
}

func innermostContainerForNode(defs []rawDef, node *tree_sitter.Node) int {
	best := -1
	var bestSpan uint
	for i, d := range defs {
		if !contains(d.node, node) {
			continue
		}
		span := d.node.EndByte() - d.node.StartByte()
		if best < 0 || span < bestSpan {
			best = i
			bestSpan = span
		}
	}
	return best
}

func contains(outer, inner *tree_sitter.Node) bool {
	if outer.StartByte() == inner.StartByte() && outer.EndByte() == inner.EndByte() {
		return false
	}
	return outer.StartByte() <= inner.StartByte() && outer.EndByte() >= inner.EndByte()
}

// headerLine returns node's first source line, trimmed, as a lightweight
// stand-in for a full signature (the declaration header up to its first
// newline: body and docstring excluded).
func headerLine(content []byte, node *tree_sitter.Node) string {
	text := node.Utf8Text(content)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// leadingComment scans the source lines immediately above startRow (the
// definition's 0-based start line) for a contiguous run of line comments,
// stopping at the first blank line or non-comment line, and joins them in
// source order. Returns "" when the language has no line-comment prefix or
// no comment immediately precedes the definition.
func leadingComment(content []byte, startRow int, prefix string) string {
	if prefix == "" || startRow == 0 {
		return ""
	}
	lines := strings.Split(string(content), "\n")
	if startRow > len(lines) {
		return ""
	}

	var collected []string
	for row := startRow - 1; row >= 0; row-- {
		line := strings.TrimSpace(lines[row])
		if line == "" {
			break
		}
		if !strings.HasPrefix(line, prefix) {
			break
		}
		collected = append(collected, strings.TrimSpace(strings.TrimPrefix(line, prefix)))
	}
	if len(collected) == 0 {
		return ""
	}
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return strings.Join(collected, "\n")
}

// isExported applies each language's own export convention: capitalized
// identifiers for Go, everything else defaults to true since most grammars
// this catalog covers don't encode visibility in the identifier itself.
func isExported(lang types.Language, name string) bool {
	if lang != types.LanguageGo {
		return true
	}
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}
