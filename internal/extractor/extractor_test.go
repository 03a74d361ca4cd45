package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arven/codegraph/internal/parser"
	"github.com/arven/codegraph/internal/types"
)

const pythonFixture = `class Person:
    def __init__(self, name):
        self.name = name

    def greet(self):
        print("hi", self.name)


def main():
    p = Person("Ada")
    p.greet()
`

// extract runs the real Parser Pool + Query Catalog + Context Extractor
// pipeline over src, mirroring what internal/graph.Manager does per file.
func extract(t *testing.T, lang types.Language, path, src string) Result {
	t.Helper()
	pool := parser.NewPool()
	file, tree, err := pool.ParseFromSource(context.Background(), path, lang, []byte(src))
	require.NoError(t, err)
	defer tree.Close()

	matches, err := pool.ExecuteQuery(lang, tree, []byte(src))
	require.NoError(t, err)

	return Extract(file, 1, matches, 1)
}

func findSymbol(t *testing.T, result Result, fqn string) types.Symbol {
	t.Helper()
	for _, s := range result.Symbols {
		if s.FQN == fqn {
			return s
		}
	}
	t.Fatalf("symbol %q not found among %d extracted symbols", fqn, len(result.Symbols))
	return types.Symbol{}
}

func TestExtractPythonNestsMethodUnderClass(t *testing.T) {
	result := extract(t, types.LanguagePython, "person.py", pythonFixture)

	class := findSymbol(t, result, "Person")
	assert.Equal(t, types.SymbolClass, class.Kind)

	greet := findSymbol(t, result, "Person.greet")
	// Python's query catalog captures every def as definition.function
	// regardless of class nesting; there is no separate method capture.
	assert.Equal(t, types.SymbolFunction, greet.Kind)
	assert.Equal(t, "Person", greet.ParentFQN)

	assert.GreaterOrEqual(t, greet.Location.StartLine, class.Location.StartLine)
	assert.LessOrEqual(t, greet.Location.EndLine, class.Location.EndLine)
}

func TestExtractPythonCapturesCallReference(t *testing.T) {
	result := extract(t, types.LanguagePython, "person.py", pythonFixture)

	found := false
	for _, ref := range result.References {
		if ref.TargetName == "greet" && ref.Kind == types.ReferenceCall {
			found = true
			assert.Equal(t, "main", ref.EnclosingFQN)
		}
	}
	assert.True(t, found, "main's p.greet() call must be captured as a reference")
}

const goFixture = `package main

func helper() {}

type Box struct{}

func (b *Box) Run() {
	helper()
}
`

func TestExtractGoFunctionAndMethodAreSiblingsNotNested(t *testing.T) {
	result := extract(t, types.LanguageGo, "box.go", goFixture)

	helper := findSymbol(t, result, "helper")
	assert.Equal(t, types.SymbolFunction, helper.Kind)
	assert.Empty(t, helper.ParentFQN, "a package-level function has no enclosing symbol")

	run := findSymbol(t, result, "Box.Run")
	assert.Equal(t, types.SymbolMethod, run.Kind)
}

func TestExtractAssignsSequentialLocalIDsStartingFromNextLocalID(t *testing.T) {
	result := extract(t, types.LanguageGo, "box.go", goFixture)
	require.NotEmpty(t, result.Symbols)

	seen := make(map[uint32]bool)
	for _, s := range result.Symbols {
		local := s.ID.LocalSymbolID
		assert.False(t, seen[local], "local IDs must be unique within one file")
		seen[local] = true
		assert.GreaterOrEqual(t, local, uint32(1))
	}
}
