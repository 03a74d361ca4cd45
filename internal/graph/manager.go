package graph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"

	"github.com/arven/codegraph/internal/config"
	cgerrors "github.com/arven/codegraph/internal/errors"
	"github.com/arven/codegraph/internal/extractor"
	"github.com/arven/codegraph/internal/logging"
	"github.com/arven/codegraph/internal/parser"
	"github.com/arven/codegraph/internal/types"
)

// Stats summarizes one build() or update_file() pass.
type Stats struct {
	FilesIndexed         int
	FilesFailed          int
	FilesRemoved         int
	SymbolsExtracted     int
	ReferencesResolved   int
	ReferencesUnresolved int
	Duration             time.Duration
}

// Manager is the Graph Manager: the single source of truth for the project
// graph. One Manager wraps one Store (selected by configuration) and the
// process's Parser Pool.
type Manager struct {
	mu    sync.RWMutex
	store Store
	pool  *parser.Pool
	cfg   *config.Config

	fileIDs    map[string]types.FileID
	nextFileID types.FileID

	ignoreOnce  sync.Once
	ignoreRules *config.IgnoreRules
}

// NewManager builds a Manager whose store backend is chosen by
// cfg.Graph.MemoryOptimizedStore.
func NewManager(cfg *config.Config, pool *parser.Pool) *Manager {
	var store Store
	if cfg.Graph.MemoryOptimizedStore {
		store = NewCompactStore()
	} else {
		store = NewStandardStore()
	}
	return &Manager{
		store:   store,
		pool:    pool,
		cfg:     cfg,
		fileIDs: make(map[string]types.FileID),
	}
}

// projectIgnoreRules lazily loads root's .gitignore the first time a build
// needs it, or returns nil when cfg.Index.RespectGitignore is off.
func (m *Manager) projectIgnoreRules(root string) *config.IgnoreRules {
	if !m.cfg.Index.RespectGitignore {
		return nil
	}
	m.ignoreOnce.Do(func() {
		rules, err := config.LoadIgnoreRules(root)
		if err != nil {
			logging.Debug("graph", "gitignore load failed for %s: %v", root, err)
			return
		}
		m.ignoreRules = rules
	})
	return m.ignoreRules
}

func (m *Manager) fileIDFor(path string) types.FileID {
	if id, ok := m.fileIDs[path]; ok {
		return id
	}
	m.nextFileID++
	m.fileIDs[path] = m.nextFileID
	return m.nextFileID
}

type buildResult struct {
	path    string
	record  types.FileRecord
	symbols []types.Symbol
	err     error
}

// Build enumerates every file under root that survives the configured
// ignore set, parses and extracts it in parallel, then links the whole
// graph under a single exclusive writer pass.
func (m *Manager) Build(ctx context.Context, root string) (Stats, error) {
	started := time.Now()

	paths, err := m.discoverFiles(root)
	if err != nil {
		return Stats{}, cgerrors.NewIOError("walk", root, err)
	}
	sort.Strings(paths)

	m.mu.Lock()
	ids := make([]types.FileID, len(paths))
	for i, p := range paths {
		ids[i] = m.fileIDFor(p)
	}
	m.mu.Unlock()

	workers := m.cfg.DefaultWorkerCount()
	sem := make(chan struct{}, workers)
	results := make([]buildResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p, fileID := i, p, ids[i]
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			if gctx.Err() != nil {
				return gctx.Err()
			}
			rec, syms, ferr := m.parseOneForBuild(gctx, p, fileID)
			results[i] = buildResult{path: p, record: rec, symbols: syms, err: ferr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, cgerrors.NewCancelledError("build "+root, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var stats Stats
	var fileErrs []error
	for _, r := range results {
		if r.err != nil {
			stats.FilesFailed++
			fileErrs = append(fileErrs, r.err)
			continue
		}
		r.record.Symbols = symbolIDs(r.symbols)
		m.store.PutFile(r.record, r.symbols)
		stats.FilesIndexed++
		stats.SymbolsExtracted += len(r.symbols)
	}
	if len(fileErrs) > 0 {
		logging.Error("graph", "build skipped %d files: %v", len(fileErrs), cgerrors.NewMultiError(fileErrs))
	}

	// A full rebuild must also reflect deletions: any stored file the walk
	// no longer finds is pruned before linking, so a restored snapshot or a
	// previous build can't keep dead files alive.
	discovered := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		discovered[p] = struct{}{}
	}
	for _, rec := range m.store.AllFiles() {
		if _, ok := discovered[rec.Path]; ok {
			continue
		}
		m.store.RemoveFile(rec.Path)
		m.pool.Invalidate(rec.Path)
		stats.FilesRemoved++
	}

	m.relinkAllLocked()

	for _, rec := range m.store.AllFiles() {
		for _, ref := range rec.References {
			if ref.Resolved {
				stats.ReferencesResolved++
			} else {
				stats.ReferencesUnresolved++
			}
		}
	}

	stats.Duration = time.Since(started)
	return stats, nil
}

func symbolIDs(symbols []types.Symbol) []types.CompositeSymbolID {
	out := make([]types.CompositeSymbolID, len(symbols))
	for i, s := range symbols {
		out[i] = s.ID
	}
	return out
}

func (m *Manager) parseOneForBuild(ctx context.Context, path string, fileID types.FileID) (types.FileRecord, []types.Symbol, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.FileRecord{}, nil, cgerrors.NewIOError("read", path, err)
	}

	file, tree, err := m.pool.ParseFileIfNeeded(ctx, path, content)
	if err != nil {
		return types.FileRecord{}, nil, err
	}

	matches, err := m.pool.ExecuteQuery(file.Language, tree, file.Content)
	if err != nil {
		return types.FileRecord{}, nil, err
	}

	result := extractor.Extract(file, fileID, matches, 1)
	sortSymbolsByRange(result.Symbols)

	rec := types.FileRecord{
		ID:          fileID,
		Path:        path,
		Language:    file.Language,
		ContentHash: file.ContentHash,
		References:  result.References,
		IndexedAt:   time.Now(),
	}
	return rec, result.Symbols, nil
}

// sortSymbolsByRange orders symbols (start_line, end_line desc) so enclosing
// declarations precede nested ones, per the extraction algorithm's emission
// order.
func sortSymbolsByRange(symbols []types.Symbol) {
	sort.SliceStable(symbols, func(i, j int) bool {
		if symbols[i].Location.StartLine != symbols[j].Location.StartLine {
			return symbols[i].Location.StartLine < symbols[j].Location.StartLine
		}
		return symbols[i].Location.EndLine > symbols[j].Location.EndLine
	})
}

// relinkAllLocked re-runs the linking pass over every stored file's
// references. Callers must hold mu for writing.
func (m *Manager) relinkAllLocked() {
	for _, rec := range m.store.AllFiles() {
		linked := link(m.store, rec.References, rec.Path, rec.Language)
		m.store.SetReferences(rec.Path, linked)
	}
}

// UpdateFile re-parses path, short-circuiting when its content hash hasn't
// changed, then replaces its FileRecord/symbols and re-links the graph.
func (m *Manager) UpdateFile(ctx context.Context, path string) (Stats, error) {
	started := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, cgerrors.NewIOError("read", path, err)
	}
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	m.mu.RLock()
	existing, ok := m.store.FileRecord(path)
	m.mu.RUnlock()
	if ok && existing.ContentHash == hash {
		return Stats{FilesIndexed: 1, Duration: time.Since(started)}, nil
	}

	m.mu.Lock()
	fileID := m.fileIDFor(path)
	m.mu.Unlock()

	rec, symbols, err := m.parseOneForBuild(ctx, path, fileID)
	if err != nil {
		return Stats{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec.Symbols = symbolIDs(symbols)
	m.store.PutFile(rec, symbols)
	m.relinkAllLocked()

	return Stats{FilesIndexed: 1, SymbolsExtracted: len(symbols), Duration: time.Since(started)}, nil
}

// RemoveFile deletes path's FileRecord and symbols, then re-links the
// remaining graph so incoming edges that targeted it become unresolved.
func (m *Manager) RemoveFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.store.RemoveFile(path)
	if !ok {
		return cgerrors.NewNotFoundError("file", path, nil)
	}
	m.relinkAllLocked()
	return nil
}

// FindDefinitions resolves query against by_fqn first, falling back to
// by_name. Returns NotFound (with fuzzy suggestions) when neither hits.
func (m *Manager) FindDefinitions(query string) ([]types.Symbol, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if sym, ok := m.store.Symbol(query); ok {
		return []types.Symbol{sym}, nil
	}
	if syms := m.store.SymbolsByName(query); len(syms) > 0 {
		return syms, nil
	}
	return nil, cgerrors.NewNotFoundError("symbol", query, m.suggestLocked(query))
}

// FindReferences returns every resolved reference targeting fqn.
func (m *Manager) FindReferences(fqn string) ([]types.Reference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.store.Symbol(fqn); !ok {
		return nil, cgerrors.NewNotFoundError("symbol", fqn, m.suggestLocked(fqn))
	}
	return m.store.ReferencesTo(fqn), nil
}

// FileSkeleton returns path's declared symbols in source order.
func (m *Manager) FileSkeleton(path string) ([]types.Symbol, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.store.FileRecord(path)
	if !ok {
		return nil, cgerrors.NewNotFoundError("file", path, nil)
	}

	var out []types.Symbol
	for _, sym := range m.store.AllSymbols() {
		if sym.FileID == rec.ID {
			out = append(out, sym)
		}
	}
	sortSymbolsByRange(out)
	return out, nil
}

// Store exposes the underlying Store for the Traversal Engine, which reads
// under its own caller-held read lease via WithReadLock.
func (m *Manager) Store() Store {
	return m.store
}

// WithReadLock runs fn while holding the graph's shared read lease, for
// callers (the Traversal Engine) that need multi-step read consistency.
func (m *Manager) WithReadLock(fn func(Store)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.store)
}

const suggestionSimilarityThreshold = 0.6
const maxSuggestions = 3

// suggestLocked ranks every known symbol short name by Jaro-Winkler
// similarity to query and returns the best few above threshold. Purely
// informational: never used to silently resolve a reference.
func (m *Manager) suggestLocked(query string) []string {
	seen := make(map[string]struct{})
	type scored struct {
		name  string
		score float32
	}
	var candidates []scored
	for _, sym := range m.store.AllSymbols() {
		if _, ok := seen[sym.Name]; ok {
			continue
		}
		seen[sym.Name] = struct{}{}
		score, err := edlib.StringsSimilarity(query, sym.Name, edlib.JaroWinkler)
		if err != nil || score < suggestionSimilarityThreshold {
			continue
		}
		candidates = append(candidates, scored{name: sym.Name, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

func (m *Manager) discoverFiles(root string) ([]string, error) {
	gi := m.projectIgnoreRules(root)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if rel != "." && m.excluded(rel, true, gi) {
				return filepath.SkipDir
			}
			return nil
		}
		if types.LanguageForPath(path) == types.LanguageUnknown {
			return nil
		}
		if m.excluded(rel, false, gi) {
			return nil
		}
		if len(m.cfg.Include) > 0 && !m.included(rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func (m *Manager) excluded(rel string, isDir bool, gi *config.IgnoreRules) bool {
	for _, pattern := range m.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return gi.Match(rel, isDir)
}

func (m *Manager) included(rel string) bool {
	for _, pattern := range m.cfg.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
