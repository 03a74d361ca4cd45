// Command codegraph is the MCP tool server executable: it loads a project
// configuration, starts the initialization coordinator's background
// build, and serves the seven core graph tools (plus any enabled
// collaborator tools) over stdio or HTTP/SSE.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/arven/codegraph/internal/bridge"
	"github.com/arven/codegraph/internal/config"
	"github.com/arven/codegraph/internal/logging"
	"github.com/arven/codegraph/internal/mcpserver"
	"github.com/arven/codegraph/internal/version"
	"github.com/arven/codegraph/internal/watch"
)

func main() {
	app := &cli.App{
		Name:    "codegraph",
		Usage:   "multi-language code reference graph MCP server",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "project-dir",
				Aliases: []string{"p"},
				Usage:   "project root directory to analyze (overrides config and cwd)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "raise log level from info to debug on stderr",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"P"},
				Usage:   "HTTP/SSE port; 0 selects stdio mode",
				Value:   0,
			},
			&cli.BoolFlag{
				Name:  "sse",
				Usage: "force HTTP/SSE mode (port defaults to 3000 if unset)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "watch the project root and incrementally rebuild on file changes",
			},
			&cli.StringFlag{
				Name:  "cache-file",
				Usage: "optional path to persist the graph across restarts",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path",
				Value:   ".codegraph.kdl",
			},
		},
		Action: runServer,
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return cli.Exit(fmt.Sprintf("argument error: %v", err), 2)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "codegraph: %v\n", err)
		if coder, ok := err.(cli.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func runServer(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("initialization error: %v", err), 1)
	}

	logging.SetLevelFromEnv()
	if c.Bool("verbose") {
		logging.SetLevel(logging.LevelDebug)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	br, err := bridge.Init(ctx, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("initialization error: %v", err), 1)
	}
	defer func() {
		if err := br.Shutdown(); err != nil {
			logging.Error("main", "shutdown: %v", err)
		}
	}()

	if cfg.Index.WatchMode {
		w, err := watch.New(br.Manager, cfg.Project.Root, time.Duration(cfg.Index.WatchDebounceMs)*time.Millisecond)
		if err != nil {
			logging.Error("main", "watch mode disabled: %v", err)
		} else {
			defer w.Close()
			go w.Run(ctx)
		}
	}

	awaitReady := cfg.Server.Port == 0 && !cfg.Server.SSE
	srv := mcpserver.New(br, awaitReady)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if awaitReady {
			logging.Info("main", "serving stdio (project root %s)", cfg.Project.Root)
			errChan <- srv.RunStdio(ctx)
			return
		}
		port := cfg.Server.Port
		if port == 0 {
			port = 3000
		}
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		logging.Info("main", "serving HTTP/SSE on %s (project root %s)", addr, cfg.Project.Root)
		errChan <- srv.RunHTTP(ctx, addr)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return cli.Exit(fmt.Sprintf("server error: %v", err), 1)
		}
		return nil
	case sig := <-sigChan:
		logging.Info("main", "received signal %v, shutting down", sig)
		cancel()

		select {
		case <-errChan:
			return nil
		case <-time.After(2 * time.Second):
			os.Stdin.Close()
			select {
			case <-errChan:
			case <-time.After(500 * time.Millisecond):
			}
			return nil
		}
	}
}

// loadConfigWithOverrides loads the KDL config (if any) relative to the
// chosen project root and applies --project-dir/--port/--sse/--cache-file
// CLI overrides on top; flags always win over file settings.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("project-dir")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root = cwd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir %q: %w", root, err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project dir %q is not a directory", absRoot)
	}

	cfg, err := config.LoadWithRoot(c.String("config"), absRoot)
	if err != nil {
		return nil, err
	}
	cfg.Project.Root = absRoot

	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.Bool("sse") {
		cfg.Server.SSE = true
	}
	if c.Bool("verbose") {
		cfg.Server.Verbose = true
	}
	if c.Bool("watch") {
		cfg.Index.WatchMode = true
	}
	if cacheFile := c.String("cache-file"); cacheFile != "" {
		cfg.Graph.CacheFile = cacheFile
	}

	return cfg, nil
}
