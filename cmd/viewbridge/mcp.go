package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/overlay/viewbridge"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the viewbridge tools over MCP on stdio",
	Long: `Attach to the page with live observation and serve viewbridge_get_view_state,
viewbridge_set_selection and viewbridge_update to an MCP client on stdin/stdout.
Configured sinks still run; a stdout sink is refused since stdout carries MCP.`,
	RunE: runMCP,
}

var version = "dev"

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if hasSink(cfg.Sinks, "stdout") {
		return errStdoutTaken
	}
	sinks, err := viewbridge.SinksFromConfig(cfg.Sinks, nil, nil, logger)
	if err != nil {
		return err
	}

	sess, err := viewbridge.Open(ctx, cfg, viewbridge.SessionOptions{
		Sinks:   sinks,
		Observe: true,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	srv := mcp.NewServer(&mcp.Implementation{Name: "viewbridge", Version: version}, nil)
	sess.Bridge.RegisterMCP(srv)

	logger.Info("viewbridge: serving mcp on stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}
