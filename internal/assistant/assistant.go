// Package assistant implements the AI-mediated proxy variant: the user's
// question goes to a chat-completion API that may call an MCP data connector.
package assistant

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"hederaquery/internal/anthropic"
	"hederaquery/internal/query"
)

// OfflineMessage is returned instead of live data when no connector can be used
const OfflineMessage = "Live Hedera data is only available through the Hgraph MCP connector, " +
	"which is not reachable from this deployment. Set MCP_SERVER_URL and leave " +
	"ASSISTANT_OFFLINE unset to query live data."

// Completer sends a prompt to a chat-completion API
type Completer interface {
	Complete(ctx context.Context, prompt string, servers []anthropic.MCPServer) (*anthropic.Response, error)
}

// Assistant runs queries through a Completer
type Assistant struct {
	completer Completer
	servers   []anthropic.MCPServer
	offline   bool
	logger    *zap.Logger
}

// Option configures an Assistant
type Option func(*Assistant)

// WithMCPServer declares a URL-based MCP connector on every request
func WithMCPServer(name, url, token string) Option {
	return func(a *Assistant) {
		if url == "" {
			return
		}
		a.servers = append(a.servers, anthropic.MCPServer{
			Type:               "url",
			URL:                url,
			Name:               name,
			AuthorizationToken: token,
		})
	}
}

// WithOffline forces the degraded mode
func WithOffline(offline bool) Option {
	return func(a *Assistant) {
		a.offline = a.offline || offline
	}
}

// WithLogger logs every completed reply at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Assistant. Without any MCP server it starts in degraded mode.
func New(completer Completer, opts ...Option) *Assistant {
	a := &Assistant{completer: completer, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	if completer == nil || len(a.servers) == 0 {
		a.offline = true
	}
	return a
}

// Offline reports whether the assistant answers with the static message
func (a *Assistant) Offline() bool {
	return a.offline
}

// Run answers a request. The prompt is taken from req.Prompt, or derived from
// the category when only a queryType was posted.
func (a *Assistant) Run(ctx context.Context, req query.Request) (*query.Envelope, error) {
	prompt, err := promptOf(req)
	if err != nil {
		return nil, err
	}

	if a.offline {
		return &query.Envelope{
			ToolResults:   "",
			TextResponses: []string{OfflineMessage},
			FullResponse:  json.RawMessage("[]"),
		}, nil
	}

	resp, err := a.completer.Complete(ctx, prompt, a.servers)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("assistant reply",
		zap.String("message_id", resp.ID),
		zap.String("stop_reason", resp.StopReason),
		zap.Int("tool_calls", resp.ToolCalls()))

	return &query.Envelope{
		ToolResults:   resp.ToolResults(),
		TextResponses: resp.TextBlocks(),
		FullResponse:  resp.Content,
	}, nil
}

func promptOf(req query.Request) (string, error) {
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		return prompt, nil
	}
	if req.Category != "" {
		return query.PromptFor(req.Category, req.AccountID)
	}
	return "", &query.RequestError{Message: "Missing query parameter"}
}
