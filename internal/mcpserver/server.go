// Package mcpserver implements the MCP tool server: the stdio and
// HTTP/SSE transports, the seven core graph tools, and the ancillary
// collaborator tools gated on config.Collab.
package mcpserver

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arven/codegraph/internal/bridge"
	"github.com/arven/codegraph/internal/logging"
	"github.com/arven/codegraph/internal/types"
	"github.com/arven/codegraph/pkg/pathutil"
)

const serverName = "codegraph-mcp-server"

// toolMeta is one registered tool's handshake advertisement, kept alongside
// the stdio mcp.Server's own registration so the HTTP transport (which
// cannot reach into mcp.Server's internal registry) can serve the same
// tools list and dispatch table. See http.go.
type toolMeta struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Server owns the registered MCP tool set and the process-wide Bridge it
// dispatches through.
type Server struct {
	server     *mcp.Server
	bridge     *bridge.Bridge
	awaitReady bool // stdio: true (block on readiness); HTTP: false (fail fast with NotReady)

	tools    []toolMeta
	handlers map[string]mcp.ToolHandler
}

// addTool registers tool with both the stdio mcp.Server and this Server's
// own parallel registry, keeping the HTTP/SSE transport's dispatch table in
// sync with whatever stdio advertises.
func (s *Server) addTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.server.AddTool(tool, handler)
	schema, _ := tool.InputSchema.(*jsonschema.Schema)
	s.tools = append(s.tools, toolMeta{Name: tool.Name, Description: tool.Description, InputSchema: schema})
	s.handlers[tool.Name] = handler
}

// New builds a Server wired to br and registers every tool its configuration
// enables: the seven core graph tools always, plus azure_devops_*/kusto_*/
// recovery_services_* when their Collab config block is present.
func New(br *bridge.Bridge, awaitReady bool) *Server {
	s := &Server{
		bridge:     br,
		awaitReady: awaitReady,
		handlers:   make(map[string]mcp.ToolHandler),
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: "0.1.0",
	}, nil)

	s.registerCoreTools()
	s.registerCollabTools()

	return s
}

func stringSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func intSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc}
}

func stringArraySchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: desc}
}

func (s *Server) registerCoreTools() {
	s.addTool(&mcp.Tool{
		Name:        "analyze_code",
		Description: "Parse a single file and return its extracted symbols and outward references, without touching the persistent code graph.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"file_path": stringSchema("absolute or working-directory-relative path to the file to parse")},
			Required:   []string{"file_path"},
		},
	}, s.handleAnalyzeCode)

	s.addTool(&mcp.Tool{
		Name:        "update_code_graph",
		Description: "Trigger a full rebuild of the code graph rooted at root_path (defaults to the configured project root). Returns immediately with a status.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"root_path": stringSchema("project root to rebuild; defaults to the server's configured project root")},
		},
	}, s.handleUpdateCodeGraph)

	s.addTool(&mcp.Tool{
		Name:        "find_symbol_definitions",
		Description: "Find every symbol definition matching name: exact fully-qualified name first, falling back to a short-name match across the whole graph.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"name": stringSchema("a fully-qualified name or a short symbol name")},
			Required:   []string{"name"},
		},
	}, s.handleFindSymbolDefinitions)

	s.addTool(&mcp.Tool{
		Name:        "find_symbol_references",
		Description: "Find every resolved reference (call, use, import, extends, implements, instantiate) targeting the given fully-qualified symbol name.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"fqn": stringSchema("the target symbol's fully-qualified name")},
			Required:   []string{"fqn"},
		},
	}, s.handleFindSymbolReferences)

	s.addTool(&mcp.Tool{
		Name:        "get_symbol_subgraph",
		Description: "Bounded BFS neighborhood around a symbol: nodes (symbols) and edges (source/target FQN + kind) reachable within depth hops, following both uses and used_by edges.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"fqn":        stringSchema("seed symbol's fully-qualified name"),
				"depth":      intSchema("maximum BFS hop count (default 2)"),
				"edge_kinds": stringArraySchema("restrict traversal to these reference kinds (default: all resolved kinds)"),
			},
			Required: []string{"fqn"},
		},
	}, s.handleGetSymbolSubgraph)

	s.addTool(&mcp.Tool{
		Name:        "get_related_files_skeleton",
		Description: "Union of get_symbol_subgraph over every symbol defined in file_path, grouped by file and ordered by decreasing hit-symbol count then path.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file_path": stringSchema("path whose defined symbols seed the traversal"),
				"depth":     intSchema("maximum BFS hop count (default 2)"),
			},
			Required: []string{"file_path"},
		},
	}, s.handleGetRelatedFilesSkeleton)

	s.addTool(&mcp.Tool{
		Name:        "get_multiple_files_skeleton",
		Description: "Declared-symbol skeleton for each of several files in one call; per-file errors (e.g. a file not yet indexed) are reported inline rather than failing the whole request.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"file_paths": stringArraySchema("paths to fetch skeletons for")},
			Required:   []string{"file_paths"},
		},
	}, s.handleGetMultipleFilesSkeleton)
}

// relPath renders an internal absolute path for display, relative to the
// configured project root, per pathutil's internal-absolute/external-
// relative architecture boundary.
func (s *Server) relPath(p string) string {
	return pathutil.ToRelative(p, s.bridge.Config.Project.Root)
}

// relativizeSymbols copies syms with FilePath rendered relative to the
// project root, leaving the originals (and the graph's internal absolute
// paths) untouched.
func (s *Server) relativizeSymbols(syms []types.Symbol) []types.Symbol {
	out := make([]types.Symbol, len(syms))
	for i, sym := range syms {
		sym.FilePath = s.relPath(sym.FilePath)
		out[i] = sym
	}
	return out
}

// RunStdio serves line-delimited JSON-RPC 2.0 frames over stdin/stdout.
// All logging goes to stderr via internal/logging; stdout is reserved for
// protocol frames.
func (s *Server) RunStdio(ctx context.Context) error {
	logging.Info("mcpserver", "serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the HTTP/SSE transport on addr: POST /tools/call
// dispatches a tool_call and returns its tool_result/tool_error
// synchronously; GET /sse streams progress events. See http.go.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	logging.Info("mcpserver", "serving HTTP/SSE on %s", addr)
	return serveHTTP(ctx, s, addr)
}

// Tools returns every tool this instance has registered, in registration
// order, for the HTTP transport's handshake endpoint.
func (s *Server) Tools() []toolMeta {
	return s.tools
}
