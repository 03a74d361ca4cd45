// Package kusto is a thin HTTP-over-auth client for Azure Data Explorer
// (Kusto) queries: one of the ancillary collaborator integrations the
// MCP tool server exposes alongside the graph engine, never part of the
// engine itself.
package kusto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/arven/codegraph/internal/config"
)

// Client issues control commands and KQL queries against one Kusto
// cluster/database pair, authenticated with a Microsoft identity platform
// bearer token read from the environment (there is no interactive OAuth
// device-code flow in this process).
type Client struct {
	cfg  config.KustoConfig
	http *http.Client
}

func New(cfg config.KustoConfig) *Client {
	return &Client{cfg: cfg, http: &http.Client{}}
}

func bearerToken() string {
	return os.Getenv("KUSTO_ACCESS_TOKEN")
}

// Table is one result table: column definitions plus raw rows.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Column describes one result column.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"type"`
}

// QueryResult is the response body of a v2 REST query.
type QueryResult struct {
	Tables []Table `json:"tables"`
}

func (c *Client) query(ctx context.Context, csl string) (QueryResult, error) {
	body, err := json.Marshal(map[string]string{"db": c.cfg.Database, "csl": csl})
	if err != nil {
		return QueryResult{}, fmt.Errorf("kusto: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/rest/query", c.cfg.ClusterURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return QueryResult{}, fmt.Errorf("kusto: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return QueryResult{}, fmt.Errorf("kusto: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return QueryResult{}, fmt.Errorf("kusto: decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return result, fmt.Errorf("kusto: query returned %d", resp.StatusCode)
	}
	return result, nil
}

// ExecuteQuery runs csl against the configured database.
func (c *Client) ExecuteQuery(ctx context.Context, csl string) (QueryResult, error) {
	return c.query(ctx, csl)
}

// GetTableSchema runs Kusto's `.show table T schema as json` control
// command for tableName.
func (c *Client) GetTableSchema(ctx context.Context, tableName string) (QueryResult, error) {
	return c.query(ctx, fmt.Sprintf(".show table %s schema as json", tableName))
}

// ListTables runs `.show tables`.
func (c *Client) ListTables(ctx context.Context) (QueryResult, error) {
	return c.query(ctx, ".show tables")
}

// Rows flattens a QueryResult's first table into column-name-keyed maps.
func Rows(result QueryResult) []map[string]any {
	if len(result.Tables) == 0 {
		return nil
	}
	table := result.Tables[0]
	out := make([]map[string]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		m := make(map[string]any, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(row) {
				m[col.Name] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}
