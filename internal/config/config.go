package config

import (
	"os"
	"runtime"
)

// Config holds everything codegraph needs to build and serve a reference
// graph for one project.
type Config struct {
	Version     int
	Project     Project
	Index       Index
	Performance Performance
	Graph       Graph
	Server      Server
	Collab      Collab
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

// Index controls the file walk that feeds the parser pool.
type Index struct {
	MaxFileSize      int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	WatchMode        bool
	WatchDebounceMs  int
}

// Performance controls the build's concurrency.
type Performance struct {
	ParallelFileWorkers int // 0 = auto-detect (NumCPU)
	IndexingTimeoutSec  int
}

// Graph controls the Graph Manager's storage and linking behavior.
type Graph struct {
	MemoryOptimizedStore bool   // use the compact interned-string store instead of the standard map-backed one
	CacheFile            string // optional path to persist the built graph; empty disables persistence
}

// Server controls the MCP Tool Server's transport.
type Server struct {
	Port    int // 0 = stdio transport
	SSE     bool
	Verbose bool
}

// Collab gates the ancillary, non-core collaborator tools. A zero-value
// sub-struct means that integration's tools are not registered.
type Collab struct {
	AzureDevOps      AzureDevOpsConfig
	Kusto            KustoConfig
	RecoveryServices RecoveryServicesConfig
}

type AzureDevOpsConfig struct {
	OrganizationURL string
	PersonalToken   string
	DefaultProject  string
}

type KustoConfig struct {
	ClusterURL string
	Database   string
}

// RecoveryServicesConfig configures the Azure Recovery Services (backup
// vault) collaborator tools: the subscription/resource group/vault triple
// every ARM request needs.
type RecoveryServicesConfig struct {
	SubscriptionID string
	ResourceGroup  string
	VaultName      string
}

func (c AzureDevOpsConfig) Enabled() bool { return c.OrganizationURL != "" && c.PersonalToken != "" }
func (c KustoConfig) Enabled() bool       { return c.ClusterURL != "" }
func (c RecoveryServicesConfig) Enabled() bool {
	return c.SubscriptionID != "" && c.ResourceGroup != "" && c.VaultName != ""
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	var projectConfig *Config
	kdlCfg, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}
	if kdlCfg != nil {
		projectConfig = kdlCfg
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		baseConfig.Project.Root = searchDir
		cfg = baseConfig
	default:
		root := searchDir
		if root == "." {
			if cwd, err := os.Getwd(); err == nil {
				root = cwd
			}
		}
		cfg = defaultConfig(root)
		cfg.EnrichExclusionsWithBuildArtifacts()
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			MaxFileCount:     200000,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WatchMode:        false,
			WatchDebounceMs:  300,
		},
		Performance: Performance{
			ParallelFileWorkers: 0,
			IndexingTimeoutSec:  120,
		},
		Graph: Graph{
			MemoryOptimizedStore: false,
		},
		Server: Server{
			Port: 0,
		},
		Include: []string{},
		Exclude: getDefaultExclusions(),
	}
}

// mergeConfigs merges a base (global) config with a project config. Project
// settings take precedence; exclusions from both are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool)
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}
		merged.Exclude = make([]string, 0, len(excludeMap))
		for pattern := range excludeMap {
			merged.Exclude = append(merged.Exclude, pattern)
		}
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts detects build output directories from
// language-specific build files and adds them to the exclusion list.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detected := DetectBuildOutputDirs(c.Project.Root)
	if len(detected) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
	}
}

// DefaultWorkerCount resolves Performance.ParallelFileWorkers to a concrete
// goroutine count.
func (c *Config) DefaultWorkerCount() int {
	if c.Performance.ParallelFileWorkers > 0 {
		return c.Performance.ParallelFileWorkers
	}
	return runtime.NumCPU()
}
