package config

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreRules holds the parsed contents of a project's .gitignore and
// answers whether a path (relative to the project root, slash-separated)
// should be skipped by the file walk.
type IgnoreRules struct {
	rules []ignoreRule
}

// ignoreRule is one non-comment .gitignore line. A rule containing a
// slash anywhere except the trailing position is anchored to the root,
// matching git's behavior.
type ignoreRule struct {
	glob     string
	negate   bool
	dirOnly  bool
	anchored bool
}

// LoadIgnoreRules reads root/.gitignore. A missing file is not an error;
// it yields an empty rule set that matches nothing.
func LoadIgnoreRules(root string) (*IgnoreRules, error) {
	r := &IgnoreRules{}
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		r.Add(sc.Text())
	}
	return r, sc.Err()
}

// Add parses a single .gitignore line into the rule set. Blank lines and
// comments are dropped.
func (r *IgnoreRules) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var ru ignoreRule
	if strings.HasPrefix(line, "!") {
		ru.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		ru.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		line = line[1:]
		ru.anchored = true
	} else if strings.Contains(line, "/") {
		ru.anchored = true
	}
	if line == "" {
		return
	}
	ru.glob = line
	r.rules = append(r.rules, ru)
}

// Empty reports whether no rules were loaded.
func (r *IgnoreRules) Empty() bool { return r == nil || len(r.rules) == 0 }

// Match reports whether rel should be ignored. Rules are applied in file
// order and the last matching rule wins, so a later "!keep.log" can
// rescue a path an earlier "*.log" excluded.
func (r *IgnoreRules) Match(rel string, isDir bool) bool {
	if r == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	ignored := false
	for _, ru := range r.rules {
		if ru.matches(rel, isDir) {
			ignored = !ru.negate
		}
	}
	return ignored
}

func (ru ignoreRule) matches(rel string, isDir bool) bool {
	pats := make([]string, 0, 2)
	// The bare glob names the entry itself; directory-only rules apply it
	// to directories alone, but still swallow everything beneath a matching
	// directory, found by trying each parent directory of rel in turn.
	if !ru.dirOnly || isDir {
		pats = append(pats, ru.glob)
		if !ru.anchored {
			pats = append(pats, "**/"+ru.glob)
		}
	}
	for _, p := range pats {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	if ru.dirOnly {
		if parent := path.Dir(rel); parent != "." && parent != "/" {
			return ru.matches(parent, true)
		}
	}
	return false
}
