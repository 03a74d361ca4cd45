package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cgerrors "github.com/arven/codegraph/internal/errors"
	"github.com/arven/codegraph/internal/extractor"
	"github.com/arven/codegraph/internal/graph"
	"github.com/arven/codegraph/internal/traversal"
	"github.com/arven/codegraph/internal/types"
)

// graphGate blocks (stdio) or fails fast (HTTP) until the graph is ready:
// graph-dependent tool calls check readiness before touching the graph
// manager.
func (s *Server) graphGate(ctx context.Context) error {
	coord := s.bridge.Coordinator
	if coord.IsReady() {
		return nil
	}
	if err := coord.Err(); err != nil {
		return cgerrors.NewNotReadyError("graph build failed: " + err.Error())
	}
	if !s.awaitReady {
		return cgerrors.NewNotReadyError("initial build still in progress")
	}
	return coord.AwaitReady(ctx)
}

// --- analyze_code ---

type analyzeCodeArgs struct {
	FilePath string `json:"file_path"`
}

// handleAnalyzeCode parses one file ad hoc through the parser pool and
// extractor without mutating the graph manager's store: unlike
// update_code_graph, which rebuilds the persistent graph.
func (s *Server) handleAnalyzeCode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args analyzeCodeArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("analyze_code", cgerrors.NewProtocolError("invalid arguments", err))
	}

	content, err := os.ReadFile(args.FilePath)
	if err != nil {
		return errorResult("analyze_code", cgerrors.NewIOError("read", args.FilePath, err))
	}

	file, tree, err := s.bridge.Pool.ParseFileIfNeeded(ctx, args.FilePath, content)
	if err != nil {
		return errorResult("analyze_code", err)
	}
	matches, err := s.bridge.Pool.ExecuteQuery(file.Language, tree, file.Content)
	if err != nil {
		return errorResult("analyze_code", err)
	}
	result := extractor.Extract(file, 0, matches, 1)

	return jsonResult(map[string]interface{}{
		"success":    true,
		"file_path":  args.FilePath,
		"language":   file.Language,
		"symbols":    result.Symbols,
		"references": result.References,
	})
}

// --- update_code_graph ---

type updateGraphArgs struct {
	RootPath string `json:"root_path,omitempty"`
}

// handleUpdateCodeGraph triggers a fresh full-project rebuild in the
// background and returns immediately with its status.
func (s *Server) handleUpdateCodeGraph(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateGraphArgs
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult("update_code_graph", cgerrors.NewProtocolError("invalid arguments", err))
		}
	}
	root := args.RootPath
	if root == "" {
		root = s.bridge.Config.Project.Root
	}
	status := s.bridge.Coordinator.TriggerRebuild(ctx, root)
	return jsonResult(map[string]interface{}{
		"success":   true,
		"status":    status,
		"root_path": root,
	})
}

// --- find_symbol_definitions ---

type findDefinitionsArgs struct {
	Name string `json:"name"`
}

func (s *Server) handleFindSymbolDefinitions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.graphGate(ctx); err != nil {
		return errorResult("find_symbol_definitions", err)
	}
	var args findDefinitionsArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("find_symbol_definitions", cgerrors.NewProtocolError("invalid arguments", err))
	}

	symbols, err := s.bridge.Manager.FindDefinitions(args.Name)
	if err != nil {
		return errorResult("find_symbol_definitions", err)
	}
	return jsonResult(map[string]interface{}{
		"success": true,
		"symbols": s.relativizeSymbols(symbols),
	})
}

// --- find_symbol_references ---

type findReferencesArgs struct {
	FQN string `json:"fqn"`
}

func (s *Server) handleFindSymbolReferences(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.graphGate(ctx); err != nil {
		return errorResult("find_symbol_references", err)
	}
	var args findReferencesArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("find_symbol_references", cgerrors.NewProtocolError("invalid arguments", err))
	}

	refs, err := s.bridge.Manager.FindReferences(args.FQN)
	if err != nil {
		return errorResult("find_symbol_references", err)
	}
	return jsonResult(map[string]interface{}{
		"success":    true,
		"references": refs,
	})
}

// --- get_symbol_subgraph ---

type getSubgraphArgs struct {
	FQN       string   `json:"fqn"`
	Depth     int      `json:"depth,omitempty"`
	EdgeKinds []string `json:"edge_kinds,omitempty"`
}

func (s *Server) handleGetSymbolSubgraph(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.graphGate(ctx); err != nil {
		return errorResult("get_symbol_subgraph", err)
	}
	var args getSubgraphArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("get_symbol_subgraph", cgerrors.NewProtocolError("invalid arguments", err))
	}
	if args.Depth <= 0 {
		args.Depth = 2
	}

	kinds := make([]types.ReferenceKind, len(args.EdgeKinds))
	for i, k := range args.EdgeKinds {
		kinds[i] = types.ReferenceKind(k)
	}

	var sub traversal.Result
	var err error
	s.bridge.Manager.WithReadLock(func(store graph.Store) {
		sub, err = traversal.Subgraph(store, args.FQN, args.Depth, kinds)
	})
	if err != nil {
		return errorResult("get_symbol_subgraph", err)
	}

	return jsonResult(map[string]interface{}{
		"success": true,
		"nodes":   s.relativizeSymbols(sub.Nodes),
		"edges":   sub.Edges,
		"count":   len(sub.Nodes),
	})
}

// --- get_related_files_skeleton ---

type getRelatedFilesArgs struct {
	FilePath string `json:"file_path"`
	Depth    int    `json:"depth,omitempty"`
}

func (s *Server) handleGetRelatedFilesSkeleton(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.graphGate(ctx); err != nil {
		return errorResult("get_related_files_skeleton", err)
	}
	var args getRelatedFilesArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("get_related_files_skeleton", cgerrors.NewProtocolError("invalid arguments", err))
	}
	if args.Depth <= 0 {
		args.Depth = 2
	}

	var skeletons []traversal.FileSkeleton
	var err error
	s.bridge.Manager.WithReadLock(func(store graph.Store) {
		skeletons, err = traversal.RelatedFiles(store, args.FilePath, args.Depth)
	})
	if err != nil {
		return errorResult("get_related_files_skeleton", err)
	}

	out := make([]map[string]interface{}, len(skeletons))
	for i, fs := range skeletons {
		out[i] = map[string]interface{}{
			"file_path": s.relPath(fs.Path),
			"symbols":   s.relativizeSymbols(fs.Symbols),
		}
	}
	return jsonResult(map[string]interface{}{"success": true, "files": out})
}

// --- get_multiple_files_skeleton ---

type getMultipleFilesArgs struct {
	FilePaths []string `json:"file_paths"`
}

func (s *Server) handleGetMultipleFilesSkeleton(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.graphGate(ctx); err != nil {
		return errorResult("get_multiple_files_skeleton", err)
	}
	var args getMultipleFilesArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("get_multiple_files_skeleton", cgerrors.NewProtocolError("invalid arguments", err))
	}

	type fileResult struct {
		FilePath string         `json:"file_path"`
		Symbols  []types.Symbol `json:"symbols,omitempty"`
		Error    string         `json:"error,omitempty"`
	}
	out := make([]fileResult, len(args.FilePaths))
	for i, p := range args.FilePaths {
		select {
		case <-ctx.Done():
			return errorResult("get_multiple_files_skeleton", cgerrors.NewCancelledError("get_multiple_files_skeleton", ctx.Err()))
		default:
		}
		syms, err := s.bridge.Manager.FileSkeleton(p)
		if err != nil {
			out[i] = fileResult{FilePath: s.relPath(p), Error: err.Error()}
			continue
		}
		out[i] = fileResult{FilePath: s.relPath(p), Symbols: s.relativizeSymbols(syms)}
	}

	return jsonResult(map[string]interface{}{"success": true, "files": out, "requested_at": time.Now().Format(time.RFC3339)})
}
