package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arven/codegraph/internal/collab/azuredevops"
	"github.com/arven/codegraph/internal/collab/kusto"
	"github.com/arven/codegraph/internal/collab/recoveryservices"
	cgerrors "github.com/arven/codegraph/internal/errors"
)

// registerCollabTools registers the ancillary collaborator tools the
// server exposes alongside the graph tools, never feeding into them. Each
// integration's tools are only registered when its config block is
// populated: an unset block means those tools simply don't exist for
// this server instance.
func (s *Server) registerCollabTools() {
	cfg := s.bridge.Config.Collab

	if cfg.AzureDevOps.Enabled() {
		client := azuredevops.New(cfg.AzureDevOps)
		s.registerAzureDevOpsTools(client)
	}
	if cfg.Kusto.Enabled() {
		client := kusto.New(cfg.Kusto)
		s.registerKustoTools(client)
	}
	if cfg.RecoveryServices.Enabled() {
		client := recoveryservices.New(cfg.RecoveryServices)
		s.registerRecoveryServicesTools(client)
	}
}

func genericArgsSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Description: desc}
}

func unmarshalArgs(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, cgerrors.NewProtocolError("invalid arguments", err)
	}
	return args, nil
}

func (s *Server) registerAzureDevOpsTools(client *azuredevops.Client) {
	s.addTool(&mcp.Tool{
		Name:        "azure_devops_query_work_items",
		Description: "Run a WIQL query against an Azure DevOps project (defaults to the configured default project).",
		InputSchema: genericArgsSchema("{project?, wiql?}"),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := unmarshalArgs(req.Params.Arguments)
		if err != nil {
			return errorResult("azure_devops_query_work_items", err)
		}
		result, err := client.QueryWorkItems(ctx, args)
		if err != nil {
			return errorResult("azure_devops_query_work_items", err)
		}
		return jsonResult(result)
	})

	s.addTool(&mcp.Tool{
		Name:        "azure_devops_get_work_item",
		Description: "Fetch a single Azure DevOps work item by ID.",
		InputSchema: genericArgsSchema("{id, project?}"),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := unmarshalArgs(req.Params.Arguments)
		if err != nil {
			return errorResult("azure_devops_get_work_item", err)
		}
		result, err := client.GetWorkItem(ctx, args)
		if err != nil {
			return errorResult("azure_devops_get_work_item", err)
		}
		return jsonResult(result)
	})

	s.addTool(&mcp.Tool{
		Name:        "azure_devops_create_work_item",
		Description: "Create a work item of the given type in an Azure DevOps project.",
		InputSchema: genericArgsSchema("{project?, type, title}"),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := unmarshalArgs(req.Params.Arguments)
		if err != nil {
			return errorResult("azure_devops_create_work_item", err)
		}
		result, err := client.CreateWorkItem(ctx, args)
		if err != nil {
			return errorResult("azure_devops_create_work_item", err)
		}
		return jsonResult(result)
	})

	s.addTool(&mcp.Tool{
		Name:        "azure_devops_query_pull_requests",
		Description: "List pull requests in an Azure DevOps repository.",
		InputSchema: genericArgsSchema("{project?, repository}"),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := unmarshalArgs(req.Params.Arguments)
		if err != nil {
			return errorResult("azure_devops_query_pull_requests", err)
		}
		result, err := client.QueryPullRequests(ctx, args)
		if err != nil {
			return errorResult("azure_devops_query_pull_requests", err)
		}
		return jsonResult(result)
	})
}

func (s *Server) registerKustoTools(client *kusto.Client) {
	s.addTool(&mcp.Tool{
		Name:        "kusto_execute_query",
		Description: "Run a KQL query against the configured Kusto database.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"query": stringSchema("KQL query text")},
			Required:   []string{"query"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult("kusto_execute_query", cgerrors.NewProtocolError("invalid arguments", err))
		}
		result, err := client.ExecuteQuery(ctx, args.Query)
		if err != nil {
			return errorResult("kusto_execute_query", err)
		}
		return jsonResult(map[string]any{"tables": result.Tables, "rows": kusto.Rows(result)})
	})

	s.addTool(&mcp.Tool{
		Name:        "kusto_get_table_schema",
		Description: "Fetch a Kusto table's schema as JSON.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"table": stringSchema("table name")},
			Required:   []string{"table"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Table string `json:"table"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult("kusto_get_table_schema", cgerrors.NewProtocolError("invalid arguments", err))
		}
		result, err := client.GetTableSchema(ctx, args.Table)
		if err != nil {
			return errorResult("kusto_get_table_schema", err)
		}
		return jsonResult(result)
	})

	s.addTool(&mcp.Tool{
		Name:        "kusto_list_tables",
		Description: "List every table in the configured Kusto database.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := client.ListTables(ctx)
		if err != nil {
			return errorResult("kusto_list_tables", err)
		}
		return jsonResult(map[string]any{"tables": kusto.Rows(result)})
	})
}

func (s *Server) registerRecoveryServicesTools(client *recoveryservices.Client) {
	s.addTool(&mcp.Tool{
		Name:        "recovery_services_list_vaults",
		Description: "List Recovery Services vaults in the configured subscription and resource group.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := client.ListVaults(ctx)
		if err != nil {
			return errorResult("recovery_services_list_vaults", err)
		}
		return jsonResult(result)
	})

	s.addTool(&mcp.Tool{
		Name:        "recovery_services_get_backup_status",
		Description: "Fetch the configured vault's backup job summary.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := client.GetBackupStatus(ctx)
		if err != nil {
			return errorResult("recovery_services_get_backup_status", err)
		}
		return jsonResult(result)
	})

	s.addTool(&mcp.Tool{
		Name:        "recovery_services_trigger_backup",
		Description: "Start an on-demand backup for a protected item in the configured vault.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"protected_item": stringSchema("name of the protected item to back up")},
			Required:   []string{"protected_item"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ProtectedItem string `json:"protected_item"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult("recovery_services_trigger_backup", cgerrors.NewProtocolError("invalid arguments", err))
		}
		result, err := client.TriggerBackup(ctx, args.ProtectedItem)
		if err != nil {
			return errorResult("recovery_services_trigger_backup", err)
		}
		return jsonResult(result)
	})
}
