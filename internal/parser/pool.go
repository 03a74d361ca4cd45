// Package parser implements the Parser Pool: per-language lazy grammar
// initialization, a sync.Pool of reusable tree-sitter parsers, and a
// bounded (path, content-hash)-keyed tree cache so re-parsing an unchanged
// file is free.
package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	cgerrors "github.com/arven/codegraph/internal/errors"
	"github.com/arven/codegraph/internal/queries"
	"github.com/arven/codegraph/internal/types"
)

// languageState lazily builds one tree-sitter Language binding and pools
// parsers preconfigured with it.
type languageState struct {
	once sync.Once
	lang *tree_sitter.Language
	pool sync.Pool

	queryOnce sync.Once
	query     *tree_sitter.Query
	queryErr  error
}

// cacheEntry is one cached parse result: the tree plus the metadata needed
// to decide whether a later parse can reuse it. Revalidation compares the
// cheap 64-bit key, not the sha256 record digest.
type cacheEntry struct {
	fastKey  uint64
	file     *types.ParsedFile
	tree     *tree_sitter.Tree
	lastUsed time.Time
}

// maxCachedTrees bounds the tree cache; the least-recently-used entry is
// evicted when a new path would exceed it.
const maxCachedTrees = 512

// Pool is the process-wide Parser Pool. One Pool is shared by the whole
// build; callers never construct tree-sitter parsers directly.
type Pool struct {
	catalog *queries.Catalog

	mu     sync.Mutex // guards languages map creation
	langs  map[types.Language]*languageState

	cacheMu sync.RWMutex
	cache   map[string]*cacheEntry // keyed by absolute path
}

// NewPool constructs an empty pool. Grammars are built lazily on first use.
func NewPool() *Pool {
	return &Pool{
		catalog: queries.NewCatalog(),
		langs:   make(map[types.Language]*languageState),
		cache:   make(map[string]*cacheEntry),
	}
}

func (p *Pool) stateFor(lang types.Language) (*languageState, error) {
	p.mu.Lock()
	st, ok := p.langs[lang]
	if !ok {
		st = &languageState{}
		p.langs[lang] = st
	}
	p.mu.Unlock()

	var initErr error
	st.once.Do(func() {
		ctor, ok := grammarConstructors[lang]
		if !ok {
			initErr = cgerrors.NewUnsupportedLanguageError("", string(lang))
			return
		}
		l := ctor()
		st.lang = l
		st.pool.New = func() any {
			ps := tree_sitter.NewParser()
			_ = ps.SetLanguage(l)
			return ps
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return st, nil
}

func (st *languageState) getParser() *tree_sitter.Parser {
	return st.pool.Get().(*tree_sitter.Parser)
}

func (st *languageState) releaseParser(ps *tree_sitter.Parser) {
	ps.Reset()
	st.pool.Put(ps)
}

// contentHash is the publicly observable record digest carried on
// ParsedFile.ContentHash and compared by the graph manager's update path.
func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// fastHash is the cache revalidation key: cheap enough to compute on every
// ParseFileIfNeeded call, never exposed outside the pool.
func fastHash(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// ParseFileIfNeeded parses path's content, reusing the cached tree when
// content's hash matches what is already cached for path. Returns the
// ParsedFile record and the live tree-sitter tree (owned by the pool; valid
// until the next ParseFileIfNeeded/UpdateFile call for the same path).
func (p *Pool) ParseFileIfNeeded(ctx context.Context, path string, content []byte) (*types.ParsedFile, *tree_sitter.Tree, error) {
	lang := types.LanguageForPath(path)
	if lang == types.LanguageUnknown {
		return nil, nil, cgerrors.NewUnsupportedLanguageError(path, "")
	}

	key := fastHash(content)

	p.cacheMu.RLock()
	entry, ok := p.cache[path]
	p.cacheMu.RUnlock()
	if ok && entry.fastKey == key {
		p.cacheMu.Lock()
		entry.lastUsed = time.Now()
		p.cacheMu.Unlock()
		return entry.file, entry.tree, nil
	}

	file, tree, err := p.ParseFromSource(ctx, path, lang, content)
	if err != nil {
		return nil, nil, err
	}
	file.ContentHash = contentHash(content)

	p.cacheMu.Lock()
	if old, existed := p.cache[path]; existed && old.tree != nil {
		old.tree.Close()
	}
	delete(p.cache, path)
	p.evictOldestLocked()
	p.cache[path] = &cacheEntry{fastKey: key, file: file, tree: tree, lastUsed: time.Now()}
	p.cacheMu.Unlock()

	return file, tree, nil
}

// ParseFromSource parses content as lang without consulting or updating the
// cache. Used for one-off parses (e.g. a query-only caller that supplies
// its own content outside the normal build flow).
func (p *Pool) ParseFromSource(ctx context.Context, path string, lang types.Language, content []byte) (file *types.ParsedFile, tree *tree_sitter.Tree, err error) {
	st, err := p.stateFor(lang)
	if err != nil {
		return nil, nil, err
	}

	// Defensive copy: the cgo parse call may retain or mutate the backing
	// buffer across incremental edits; never hand it the caller's slice.
	buf := make([]byte, len(content))
	copy(buf, content)

	ps := st.getParser()
	defer st.releaseParser(ps)

	defer func() {
		if r := recover(); r != nil {
			err = cgerrors.NewParseError(path, 0, 0, "", fmt.Errorf("panic during parse: %v", r))
		}
	}()

	if ctx.Err() != nil {
		return nil, nil, cgerrors.NewCancelledError("parse "+path, ctx.Err())
	}

	t := ps.Parse(buf, nil)
	if t == nil {
		return nil, nil, cgerrors.NewParseError(path, 0, 0, "", fmt.Errorf("parser returned nil tree"))
	}

	hasErrors := t.RootNode().HasError()

	file = &types.ParsedFile{
		Path:      path,
		Language:  lang,
		Content:   buf,
		ParsedAt:  time.Now(),
		HasErrors: hasErrors,
	}

	return file, t, nil
}

// ExecuteQuery compiles (once per language, cached) and runs the query
// catalog's source for lang over tree's root node, returning every match's
// captures keyed by capture name.
func (p *Pool) ExecuteQuery(lang types.Language, tree *tree_sitter.Tree, content []byte) ([]QueryMatch, error) {
	st, err := p.stateFor(lang)
	if err != nil {
		return nil, err
	}

	st.queryOnce.Do(func() {
		src, ok := p.catalog.Source(lang)
		if !ok {
			st.queryErr = cgerrors.NewQueryError(string(lang), fmt.Errorf("no query catalog entry"))
			return
		}
		q, err := tree_sitter.NewQuery(st.lang, src)
		if err != nil {
			st.queryErr = cgerrors.NewQueryError(string(lang), err)
			return
		}
		st.query = q
	})
	if st.queryErr != nil {
		return nil, st.queryErr
	}

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	names := st.query.CaptureNames()
	var results []QueryMatch

	matches := cursor.Matches(st.query, tree.RootNode(), content)
	for m := matches.Next(); m != nil; m = matches.Next() {
		qm := QueryMatch{}
		for _, c := range m.Captures {
			if int(c.Index) >= len(names) {
				continue
			}
			node := c.Node
			qm.Captures = append(qm.Captures, Capture{Name: names[c.Index], Node: &node})
		}
		results = append(results, qm)
	}

	return results, nil
}

// QueryMatch is one query match: every capture that participated in it.
type QueryMatch struct {
	Captures []Capture
}

// Capture is a single named node captured by a query match.
type Capture struct {
	Name string
	Node *tree_sitter.Node
}

// evictOldestLocked drops least-recently-used entries until there is room
// for one more. Callers must hold cacheMu for writing.
func (p *Pool) evictOldestLocked() {
	for len(p.cache) >= maxCachedTrees {
		var oldestPath string
		var oldest time.Time
		for path, e := range p.cache {
			if oldestPath == "" || e.lastUsed.Before(oldest) {
				oldestPath = path
				oldest = e.lastUsed
			}
		}
		if entry := p.cache[oldestPath]; entry.tree != nil {
			entry.tree.Close()
		}
		delete(p.cache, oldestPath)
	}
}

// Invalidate drops path from the tree cache (used by remove_file).
func (p *Pool) Invalidate(path string) {
	p.cacheMu.Lock()
	if entry, ok := p.cache[path]; ok {
		if entry.tree != nil {
			entry.tree.Close()
		}
		delete(p.cache, path)
	}
	p.cacheMu.Unlock()
}
