package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arven/codegraph/internal/types"
)

func TestParseFileIfNeededCachesUnchangedContent(t *testing.T) {
	p := NewPool()
	content := []byte("package main\n\nfunc main() {}\n")

	file1, tree1, err := p.ParseFileIfNeeded(context.Background(), "a.go", content)
	require.NoError(t, err)
	require.NotNil(t, tree1)

	file2, tree2, err := p.ParseFileIfNeeded(context.Background(), "a.go", content)
	require.NoError(t, err)

	assert.Same(t, tree1, tree2, "unchanged content must reuse the cached tree, not re-parse")
	assert.Equal(t, file1.ContentHash, file2.ContentHash)
}

func TestParseFileIfNeededReparsesOnContentChange(t *testing.T) {
	p := NewPool()
	first := []byte("package main\n\nfunc main() {}\n")
	second := []byte("package main\n\nfunc main() { println(\"hi\") }\n")

	_, tree1, err := p.ParseFileIfNeeded(context.Background(), "a.go", first)
	require.NoError(t, err)

	file2, tree2, err := p.ParseFileIfNeeded(context.Background(), "a.go", second)
	require.NoError(t, err)

	assert.NotSame(t, tree1, tree2)
	assert.NotEmpty(t, file2.ContentHash)
}

func TestParseFileIfNeededRejectsUnknownExtension(t *testing.T) {
	p := NewPool()
	_, _, err := p.ParseFileIfNeeded(context.Background(), "README.unknownlang", []byte("whatever"))
	assert.Error(t, err)
}

func TestParseFromSourceDetectsSyntaxErrors(t *testing.T) {
	p := NewPool()
	file, tree, err := p.ParseFromSource(context.Background(), "broken.go", types.LanguageGo, []byte("package main\nfunc {{{\n"))
	require.NoError(t, err, "tree-sitter parses malformed source into an error tree rather than failing")
	require.NotNil(t, tree)
	assert.True(t, file.HasErrors)
}

func TestExecuteQueryReturnsMatchesForEachLanguage(t *testing.T) {
	cases := []struct {
		lang types.Language
		path string
		src  string
	}{
		{types.LanguageGo, "a.go", "package main\n\nfunc helper() {}\n"},
		{types.LanguagePython, "a.py", "def helper():\n    pass\n"},
		{types.LanguageJavaScript, "a.js", "function helper() {}\n"},
		{types.LanguageRust, "a.rs", "fn helper() {}\n"},
	}

	for _, tc := range cases {
		t.Run(string(tc.lang), func(t *testing.T) {
			p := NewPool()
			file, tree, err := p.ParseFromSource(context.Background(), tc.path, tc.lang, []byte(tc.src))
			require.NoError(t, err)

			matches, err := p.ExecuteQuery(tc.lang, tree, file.Content)
			require.NoError(t, err)
			assert.NotEmpty(t, matches, "expected at least one definition match for %s", tc.lang)
		})
	}
}

func TestInvalidateDropsCachedTree(t *testing.T) {
	p := NewPool()
	content := []byte("package main\n\nfunc main() {}\n")
	_, tree1, err := p.ParseFileIfNeeded(context.Background(), "a.go", content)
	require.NoError(t, err)
	require.NotNil(t, tree1)

	p.Invalidate("a.go")

	_, tree2, err := p.ParseFileIfNeeded(context.Background(), "a.go", content)
	require.NoError(t, err)
	assert.NotSame(t, tree1, tree2, "invalidated path must be re-parsed even with identical content")
}

func TestFastHashIsStableAndContentSensitive(t *testing.T) {
	a := fastHash([]byte("hello"))
	b := fastHash([]byte("hello"))
	c := fastHash([]byte("world"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
