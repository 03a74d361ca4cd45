// Package recoveryservices is a thin HTTP-over-auth client for Azure
// Recovery Services (backup vaults): one of the ancillary collaborator
// integrations the MCP tool server exposes alongside the graph engine,
// never part of the engine itself.
package recoveryservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/arven/codegraph/internal/config"
)

const armAPIVersion = "2023-04-01"

// Client issues ARM (Azure Resource Manager) requests against one
// subscription/resource-group/vault triple, authenticated with a bearer
// token read from the environment.
type Client struct {
	cfg  config.RecoveryServicesConfig
	http *http.Client
}

func New(cfg config.RecoveryServicesConfig) *Client {
	return &Client{cfg: cfg, http: &http.Client{}}
}

func bearerToken() string {
	return os.Getenv("AZURE_ACCESS_TOKEN")
}

func (c *Client) do(ctx context.Context, method, path string) (map[string]any, error) {
	url := fmt.Sprintf("https://management.azure.com%s?api-version=%s", path, armAPIVersion)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("recoveryservices: build request: %w", err)
	}
	if token := bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recoveryservices: request failed: %w", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("recoveryservices: decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("recoveryservices: %s returned %d", path, resp.StatusCode)
	}
	return out, nil
}

// ListVaults lists the Recovery Services vaults in the configured
// subscription and resource group.
func (c *Client) ListVaults(ctx context.Context) (map[string]any, error) {
	path := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.RecoveryServices/vaults",
		c.cfg.SubscriptionID, c.cfg.ResourceGroup)
	return c.do(ctx, http.MethodGet, path)
}

// GetBackupStatus fetches the configured vault's backup job summary.
func (c *Client) GetBackupStatus(ctx context.Context) (map[string]any, error) {
	path := fmt.Sprintf(
		"/subscriptions/%s/resourceGroups/%s/providers/Microsoft.RecoveryServices/vaults/%s/backupJobs",
		c.cfg.SubscriptionID, c.cfg.ResourceGroup, c.cfg.VaultName)
	return c.do(ctx, http.MethodGet, path)
}

// TriggerBackup starts an on-demand backup for the named protected item.
func (c *Client) TriggerBackup(ctx context.Context, protectedItem string) (map[string]any, error) {
	path := fmt.Sprintf(
		"/subscriptions/%s/resourceGroups/%s/providers/Microsoft.RecoveryServices/vaults/%s/backupFabrics/Azure/protectionContainers/%s/backup",
		c.cfg.SubscriptionID, c.cfg.ResourceGroup, c.cfg.VaultName, protectedItem)
	return c.do(ctx, http.MethodPost, path)
}
