package types

// ReferenceKind classifies how a Reference's source site relates to the
// symbol it targets.
type ReferenceKind string

const (
	ReferenceCall        ReferenceKind = "call"
	ReferenceUse         ReferenceKind = "use"
	ReferenceImport      ReferenceKind = "import"
	ReferenceExtends     ReferenceKind = "extends"
	ReferenceImplements  ReferenceKind = "implements"
	ReferenceInstantiate ReferenceKind = "instantiate"
)

// Reference is one use-site of a symbol: a call, a type reference, an
// extends/implements clause, or an import. TargetSymbolID is zero-valued
// until the Graph Manager's linking pass resolves TargetName against the
// graph's indexes.
type Reference struct {
	SourceFileID   FileID
	SourceFilePath string
	TargetName     string // as written at the use site, pre-resolution
	ResolvedFQN    string // target symbol's FQN once resolved; empty until then
	TargetSymbolID CompositeSymbolID
	Resolved       bool
	Ambiguous      bool
	Candidates     []string // candidate FQNs, populated only when Ambiguous
	Kind           ReferenceKind
	Location       SymbolLocation
	EnclosingFQN   string // FQN of the symbol the reference occurs inside, if any
}
