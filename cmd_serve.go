package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hederaquery/internal/anthropic"
	"hederaquery/internal/assistant"
	"hederaquery/internal/config"
	"hederaquery/internal/hgraph"
	"hederaquery/internal/metrics"
	"hederaquery/internal/query"
	"hederaquery/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the query proxy",
	Long: `Serves POST /api/query, GET /healthz and GET /metrics.

PROXY_MODE=direct answers structured queries through the Hgraph GraphQL API.
PROXY_MODE=assistant forwards questions to the chat-completion API; without
MCP_SERVER_URL, or with ASSISTANT_OFFLINE=true, it answers with a static notice.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(newRunner(cfg, logger), cfg.ProxyMode, logger, metrics.New())
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}

// newRunner builds the proxy variant selected by cfg.ProxyMode
func newRunner(cfg *config.Config, logger *zap.Logger) query.Runner {
	if cfg.ProxyMode != config.ModeAssistant {
		return query.NewDirect(hgraph.NewClient(cfg.HgraphAPIKey, cfg.HgraphBaseURL))
	}

	opts := []assistant.Option{
		assistant.WithMCPServer(cfg.MCPServerName, cfg.MCPServerURL, cfg.MCPServerToken),
		assistant.WithOffline(cfg.AssistantOffline),
		assistant.WithLogger(logger),
	}

	var a *assistant.Assistant
	if cfg.AnthropicAPIKey == "" {
		a = assistant.New(nil, opts...)
	} else {
		a = assistant.New(anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.AnthropicModel), opts...)
	}

	if a.Offline() {
		logger.Warn("assistant running without a data connector; answers are static")
	} else {
		logger.Info("assistant connector configured", zap.String("mcp_server", cfg.MCPServerName))
	}
	return a
}
