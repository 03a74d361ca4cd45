// Package azuredevops is a thin HTTP-over-auth client for Azure DevOps
// work items and pull requests: one of the ancillary collaborator
// integrations the MCP tool server exposes alongside the graph engine,
// never part of the engine itself. The surface is deliberately small:
// JSON over net/http with PAT basic auth, no SDK.
package azuredevops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arven/codegraph/internal/config"
)

// Client is a thin wrapper around Azure DevOps's REST API, authenticated
// with a personal access token via HTTP Basic auth (the PAT convention the
// REST API documents: empty username, PAT as password).
type Client struct {
	cfg  config.AzureDevOpsConfig
	http *http.Client
}

func New(cfg config.AzureDevOpsConfig) *Client {
	return &Client{cfg: cfg, http: &http.Client{}}
}

const apiVersion = "7.0"

func (c *Client) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("azuredevops: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	url := fmt.Sprintf("%s%s%sapi-version=%s", c.cfg.OrganizationURL, path, sep(path), apiVersion)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("azuredevops: build request: %w", err)
	}
	req.SetBasicAuth("", c.cfg.PersonalToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azuredevops: request failed: %w", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, fmt.Errorf("azuredevops: decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("azuredevops: %s returned %d", path, resp.StatusCode)
	}
	return out, nil
}

func sep(path string) string {
	if strings.ContainsRune(path, '?') {
		return "&"
	}
	return "?"
}

// withDefaultProject injects the config's default project into args when
// the caller didn't supply one.
func (c *Client) withDefaultProject(args map[string]any) map[string]any {
	if args == nil {
		args = map[string]any{}
	}
	if _, ok := args["project"]; !ok && c.cfg.DefaultProject != "" {
		args["project"] = c.cfg.DefaultProject
	}
	return args
}

// QueryWorkItems runs a WIQL query against project (or the configured
// default project).
func (c *Client) QueryWorkItems(ctx context.Context, args map[string]any) (map[string]any, error) {
	args = c.withDefaultProject(args)
	project, _ := args["project"].(string)
	wiql, _ := args["wiql"].(string)
	if wiql == "" {
		wiql = "SELECT [System.Id], [System.Title], [System.State] FROM WorkItems"
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/%s/_apis/wit/wiql", project), map[string]string{"query": wiql})
}

// GetWorkItem fetches one work item by ID.
func (c *Client) GetWorkItem(ctx context.Context, args map[string]any) (map[string]any, error) {
	args = c.withDefaultProject(args)
	id, _ := args["id"].(float64)
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/_apis/wit/workitems/%d", int(id)), nil)
}

// CreateWorkItem creates a work item of the given type in a project.
func (c *Client) CreateWorkItem(ctx context.Context, args map[string]any) (map[string]any, error) {
	args = c.withDefaultProject(args)
	project, _ := args["project"].(string)
	workItemType, _ := args["type"].(string)
	title, _ := args["title"].(string)

	patch := []map[string]any{
		{"op": "add", "path": "/fields/System.Title", "value": title},
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/%s/_apis/wit/workitems/$%s", project, workItemType), patch)
}

// QueryPullRequests lists pull requests in a repository.
func (c *Client) QueryPullRequests(ctx context.Context, args map[string]any) (map[string]any, error) {
	args = c.withDefaultProject(args)
	project, _ := args["project"].(string)
	repo, _ := args["repository"].(string)
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/_apis/git/repositories/%s/pullrequests", project, repo), nil)
}
