package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cgerrors "github.com/arven/codegraph/internal/errors"
	"github.com/arven/codegraph/internal/logging"
)

// serveHTTP implements the HTTP/SSE transport: POST /tools/call dispatches
// one tool_call synchronously, GET /sse streams readiness and heartbeat
// events, and GET /tools advertises the handshake tool list. It is a plain
// net/http adapter dispatching into the exact same handler callbacks the
// stdio transport registered.
func serveHTTP(ctx context.Context, s *Server, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/tools", s.handleListTools)
	mux.HandleFunc("/tools/call", s.handleToolCall)
	mux.HandleFunc("/sse", s.handleSSE)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	type toolInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	out := make([]toolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, toolInfo{Name: t.Name, Description: t.Description})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tools": out})
}

type toolCallRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolCall dispatches one tool_call to the same handler the stdio
// transport registered for name, and answers with tool_result or
// tool_error.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var call toolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"code":    "protocol_error",
			"message": fmt.Sprintf("invalid tool_call body: %v", err),
		})
		return
	}

	handler, ok := s.handlers[call.Name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"code":    "unknown_tool",
			"message": fmt.Sprintf("no such tool: %q", call.Name),
		})
		return
	}

	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: call.Name, Arguments: call.Arguments}}
	result, err := handler(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if cgerrors.TypeOf(err) == cgerrors.ErrorTypeNotReady {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]interface{}{"code": "tool_error", "message": err.Error()})
		return
	}

	status := http.StatusOK
	if result.IsError && resultErrorCode(result) == string(cgerrors.ErrorTypeNotReady) {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			w.Write([]byte(text.Text))
			return
		}
	}
}

// resultErrorCode extracts the machine-readable "code" field errorResult
// embeds in a failed tool result's JSON body, letting the HTTP transport
// map error kinds to status codes even though the failure reached us
// already rendered as JSON rather than as a typed error value.
func resultErrorCode(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		text, ok := c.(*mcp.TextContent)
		if !ok {
			continue
		}
		var body struct {
			Code string `json:"code"`
		}
		if json.Unmarshal([]byte(text.Text), &body) == nil && body.Code != "" {
			return body.Code
		}
	}
	return ""
}

// handleSSE streams readiness and heartbeat events for long-running
// progress. Connections close when the coordinator reports ready or the
// client disconnects.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	coord := s.bridge.Coordinator
	for {
		select {
		case <-r.Context().Done():
			return
		case <-coord.Ready():
			stats := coord.Stats()
			fmt.Fprintf(w, "event: ready\ndata: {\"files_indexed\":%d,\"symbols_extracted\":%d}\n\n",
				stats.FilesIndexed, stats.SymbolsExtracted)
			flusher.Flush()
			return
		case <-ticker.C:
			fmt.Fprintf(w, "event: heartbeat\ndata: {\"ready\":%t}\n\n", coord.IsReady())
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("mcpserver", "failed to write HTTP response: %v", err)
	}
}
