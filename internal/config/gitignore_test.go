package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreRulesMatchBasics(t *testing.T) {
	r := &IgnoreRules{}
	r.Add("# comment")
	r.Add("")
	r.Add("*.log")
	r.Add("vendor/")
	r.Add("/dist")

	assert.True(t, r.Match("server.log", false))
	assert.True(t, r.Match("deep/nested/server.log", false))
	assert.False(t, r.Match("server.log.txt", false))

	assert.True(t, r.Match("vendor", true), "directory rule matches the directory itself")
	assert.True(t, r.Match("vendor/dep/dep.go", false), "directory rule swallows contents")
	assert.False(t, r.Match("vendor", false), "directory rule does not match a plain file")

	assert.True(t, r.Match("dist", true))
	assert.False(t, r.Match("sub/dist", true), "anchored rule only matches at the root")
}

func TestIgnoreRulesNegationLastMatchWins(t *testing.T) {
	r := &IgnoreRules{}
	r.Add("*.log")
	r.Add("!keep.log")

	assert.True(t, r.Match("debug.log", false))
	assert.False(t, r.Match("keep.log", false))
	assert.False(t, r.Match("logs/keep.log", false))
}

func TestIgnoreRulesAnchoredByInnerSlash(t *testing.T) {
	r := &IgnoreRules{}
	r.Add("docs/*.md")

	assert.True(t, r.Match("docs/readme.md", false))
	assert.False(t, r.Match("pkg/docs/readme.md", false))
}

func TestLoadIgnoreRulesMissingFileIsEmpty(t *testing.T) {
	r, err := LoadIgnoreRules(t.TempDir())
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.False(t, r.Match("anything.go", false))
}

func TestLoadIgnoreRulesReadsFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("target/\n*.tmp\n"), 0o644))

	r, err := LoadIgnoreRules(root)
	require.NoError(t, err)
	assert.True(t, r.Match("target/debug/main", false))
	assert.True(t, r.Match("scratch.tmp", false))
	assert.False(t, r.Match("src/main.rs", false))
}

func TestNilIgnoreRulesMatchNothing(t *testing.T) {
	var r *IgnoreRules
	assert.False(t, r.Match("anything", false))
	assert.True(t, r.Empty())
}
