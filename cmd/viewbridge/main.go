// Command viewbridge attaches to a live page and mirrors its tagged
// component tree for a visual editor.
//
// Usage:
//
//	viewbridge watch --config viewbridge.yaml        # observe and stream snapshots
//	viewbridge watch --url http://localhost:5173 --listen :7070
//	viewbridge dump --url http://localhost:5173      # one pass, print the view state
//	viewbridge mcp --url http://localhost:5173       # serve MCP tools on stdio
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/overlay/viewbridge"
)

var rootCmd = &cobra.Command{
	Use:           "viewbridge",
	Short:         "Mirror a live component tree's geometry for a visual editor",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	pageURL    string
	container  string
	logLevel   string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to viewbridge.yaml config file")
	pf.StringVar(&pageURL, "url", "", "page URL (overrides page.url)")
	pf.StringVar(&container, "container", "", "root container CSS selector (overrides page.container)")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		newLogger().Error("viewbridge: fatal", "error", err)
		os.Exit(1)
	}
}

// newLogger also installs the logger as the slog default, which the HTTP
// middleware logs through.
func newLogger() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads --config (if any) and applies the flag overrides.
func loadConfig() (*viewbridge.Config, error) {
	var (
		cfg *viewbridge.Config
		err error
	)
	if configPath != "" {
		cfg, err = viewbridge.LoadConfigFile(configPath)
	} else {
		cfg, err = viewbridge.ParseConfig(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if pageURL != "" {
		cfg.Page.URL = pageURL
	}
	if container != "" {
		cfg.Page.Container = container
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var errStdoutTaken = errors.New("stdout sink cannot be used with the mcp command")
