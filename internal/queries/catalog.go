// Package queries holds the per-language tree-sitter query catalog: one
// query source string per Language, written against captures in three
// families the Context Extractor dispatches on:
//
//   - definition.<kind>: a node that introduces a Symbol; must pair with @name
//   - reference.<kind>: a node that uses a symbol by name; must pair with @name
//   - scope.<kind>: inside a definition match, names the definition's
//     enclosing scope directly (a Go method's receiver type); a match with
//     only a scope capture adds nothing, since nesting otherwise comes from
//     node-range containment
//
// Captures outside these three families, or definition/reference kinds the
// extractor doesn't recognize, are ignored rather than rejected: this is
// what lets a query evolve without breaking the extractor.
package queries

import "github.com/arven/codegraph/internal/types"

// Catalog maps a Language to its compiled-at-startup query source.
type Catalog struct {
	sources map[types.Language]string
}

// NewCatalog builds the catalog with every language this build ships a
// query for.
func NewCatalog() *Catalog {
	return &Catalog{
		sources: map[types.Language]string{
			types.LanguageGo:         goQuery,
			types.LanguagePython:     pythonQuery,
			types.LanguageJavaScript: javascriptQuery,
			types.LanguageTypeScript: typescriptQuery,
			types.LanguageTSX:        tsxQuery,
			types.LanguageJava:       javaQuery,
			types.LanguageCSharp:     csharpQuery,
			types.LanguageCpp:        cppQuery,
			types.LanguageRust:       rustQuery,
			types.LanguagePHP:        phpQuery,
			types.LanguageZig:        zigQuery,
		},
	}
}

// Source returns the query source for lang, and whether one is registered.
func (c *Catalog) Source(lang types.Language) (string, bool) {
	s, ok := c.sources[lang]
	return s, ok
}
