package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from a .codegraph.kdl file under
// projectRoot. Returns (nil, nil) if no such file exists.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".codegraph.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .codegraph.kdl: %w", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root != "" {
		if filepath.IsAbs(cfg.Project.Root) {
			cfg.Project.Root = filepath.Clean(cfg.Project.Root)
		} else {
			cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
		}
	} else if absRoot, err := filepath.Abs(projectRoot); err == nil {
		cfg.Project.Root = absRoot
	} else {
		cfg.Project.Root = projectRoot
	}

	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	defaultRoot, _ := os.Getwd()
	if defaultRoot == "" {
		defaultRoot = "."
	}

	cfg := defaultConfig(defaultRoot)
	cfg.Exclude = nil
	cfg.Include = nil

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Index.MaxFileSize = sz
						}
					} else if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileSize = int64(v)
					}
				case "max_file_count":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileCount = v
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.FollowSymlinks = b
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.RespectGitignore = b
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.WatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.WatchDebounceMs = v
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "parallel_file_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.ParallelFileWorkers = v
					}
				case "indexing_timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.IndexingTimeoutSec = v
					}
				}
			}
		case "graph":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "memory_optimized_store":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Graph.MemoryOptimizedStore = b
					}
				case "cache_file":
					if s, ok := firstStringArg(cn); ok {
						cfg.Graph.CacheFile = s
					}
				}
			}
		case "server":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "port":
					if v, ok := firstIntArg(cn); ok {
						cfg.Server.Port = v
					}
				case "sse":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Server.SSE = b
					}
				}
			}
		case "azure_devops":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "organization_url":
					if s, ok := firstStringArg(cn); ok {
						cfg.Collab.AzureDevOps.OrganizationURL = s
					}
				case "personal_token":
					if s, ok := firstStringArg(cn); ok {
						cfg.Collab.AzureDevOps.PersonalToken = s
					}
				case "default_project":
					if s, ok := firstStringArg(cn); ok {
						cfg.Collab.AzureDevOps.DefaultProject = s
					}
				}
			}
		case "kusto":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "cluster_url":
					if s, ok := firstStringArg(cn); ok {
						cfg.Collab.Kusto.ClusterURL = s
					}
				case "database":
					if s, ok := firstStringArg(cn); ok {
						cfg.Collab.Kusto.Database = s
					}
				}
			}
		case "recovery_services":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "subscription_id":
					if s, ok := firstStringArg(cn); ok {
						cfg.Collab.RecoveryServices.SubscriptionID = s
					}
				case "resource_group":
					if s, ok := firstStringArg(cn); ok {
						cfg.Collab.RecoveryServices.ResourceGroup = s
					}
				case "vault_name":
					if s, ok := firstStringArg(cn); ok {
						cfg.Collab.RecoveryServices.VaultName = s
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	if cfg.Exclude == nil {
		cfg.Exclude = getDefaultExclusions()
	}
	if cfg.Include == nil {
		cfg.Include = []string{}
	}

	cfg.EnrichExclusionsWithBuildArtifacts()

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}

func getDefaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.*/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/bower_components/**",
		"**/jspm_packages/**",
		"**/.bundle/**",
		"**/.gradle/**",
		"**/.m2/**",
		"**/.cargo/**",
		"**/venv/**",
		"**/.venv/**",
		"**/site-packages/**",
		"**/Pods/**",
		"**/dist/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
		"**/bin/**",
		"**/obj/**",
		"**/*.min.js",
		"**/*.min.css",
		"**/*.bundle.js",
		"**/__pycache__/**",
		"**/*.pyc",
		"**/*.pyo",
		"**/.pytest_cache/**",
		"**/.mypy_cache/**",
		"**/Thumbs.db",
		"**/desktop.ini",
		"**/.DS_Store",
		"**/*.exe",
		"**/*.dll",
		"**/*.so",
		"**/*.a",
		"**/*.o",
		"**/*.dylib",
		"**/*.class",
		"**/*.jar",
		"**/.cache/**",
		"**/logs/**",
		"**/*.log",
		"**/tmp/**",
		"**/.tmp/**",
		"**/coverage/**",
		"**/.nyc_output/**",
	}
}
