// Package anthropic talks to the Anthropic Messages API, optionally declaring
// remote MCP servers the model may call while answering.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"resty.dev/v3"

	"hederaquery/internal/upstream"
)

const (
	// DefaultBaseURL is the public Anthropic API root
	DefaultBaseURL = "https://api.anthropic.com/v1"
	// DefaultModel is used when no model is configured
	DefaultModel = "claude-sonnet-4-20250514"

	apiVersion       = "2023-06-01"
	mcpConnectorBeta = "mcp-client-2025-04-04"
	defaultMaxTokens = 1024
)

// Content block types this package reads
const (
	BlockText          = "text"
	BlockMCPToolUse    = "mcp_tool_use"
	BlockMCPToolResult = "mcp_tool_result"
)

// Message is a single conversation turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MCPServer declares a remote MCP connector for the request
type MCPServer struct {
	Type               string `json:"type"`
	URL                string `json:"url"`
	Name               string `json:"name"`
	AuthorizationToken string `json:"authorization_token,omitempty"`
}

// Request is the Messages API request body
type Request struct {
	Model      string      `json:"model"`
	MaxTokens  int         `json:"max_tokens"`
	Messages   []Message   `json:"messages"`
	MCPServers []MCPServer `json:"mcp_servers,omitempty"`
}

// errorResponse is the body the API returns on failure
type errorResponse struct {
	Type  string `json:"type"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Response is a completed message. Content keeps the raw content array.
type Response struct {
	ID         string
	StopReason string
	Content    json.RawMessage
}

// Client sends completion requests to the Messages API
type Client struct {
	model  string
	client *resty.Client
}

// NewClient creates a new Messages API client
func NewClient(apiKey, baseURL, model string) *Client {
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		model: model,
		client: upstream.NewHTTPClient(baseURL, map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": apiVersion,
		}),
	}
}

// Complete sends a single user prompt, declaring the given MCP servers
func (c *Client) Complete(ctx context.Context, prompt string, servers []MCPServer) (*Response, error) {
	body := Request{
		Model:      c.model,
		MaxTokens:  defaultMaxTokens,
		Messages:   []Message{{Role: "user", Content: prompt}},
		MCPServers: servers,
	}

	var raw json.RawMessage
	var apiErr errorResponse

	req := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&raw).
		SetError(&apiErr)
	if len(servers) > 0 {
		req.SetHeader("anthropic-beta", mcpConnectorBeta)
	}

	resp, err := req.Post("/messages")
	if err != nil {
		return nil, fmt.Errorf("failed to call messages API: %w", upstream.ClassifyTransportError(err))
	}

	if !resp.IsSuccess() {
		if apiErr.Error != nil && apiErr.Error.Message != "" {
			return nil, upstream.NewQueryError(apiErr.Error.Message)
		}
		return nil, upstream.ClassifyHTTPError(resp.StatusCode())
	}

	return parseResponse(raw)
}

func parseResponse(raw []byte) (*Response, error) {
	if !gjson.ValidBytes(raw) {
		return nil, upstream.NewValidationError("messages API returned invalid JSON")
	}

	doc := gjson.ParseBytes(raw)
	if msg := doc.Get("error.message"); msg.Exists() {
		return nil, upstream.NewQueryError(msg.String())
	}

	content := doc.Get("content")
	if !content.IsArray() {
		return nil, upstream.NewValidationError("messages API response has no content array")
	}

	return &Response{
		ID:         doc.Get("id").String(),
		StopReason: doc.Get("stop_reason").String(),
		Content:    json.RawMessage(content.Raw),
	}, nil
}

// TextBlocks returns the text of every text block, in order
func (r *Response) TextBlocks() []string {
	texts := []string{}
	gjson.ParseBytes(r.Content).ForEach(func(_, block gjson.Result) bool {
		if block.Get("type").String() == BlockText {
			texts = append(texts, block.Get("text").String())
		}
		return true
	})
	return texts
}

// ToolCalls counts the MCP tool invocations the model made
func (r *Response) ToolCalls() int {
	var n int
	gjson.ParseBytes(r.Content).ForEach(func(_, block gjson.Result) bool {
		if block.Get("type").String() == BlockMCPToolUse {
			n++
		}
		return true
	})
	return n
}

// ToolResults joins the text carried by every MCP tool result block
func (r *Response) ToolResults() string {
	var parts []string
	gjson.ParseBytes(r.Content).ForEach(func(_, block gjson.Result) bool {
		if block.Get("type").String() != BlockMCPToolResult {
			return true
		}
		content := block.Get("content")
		if !content.IsArray() {
			if s := content.String(); s != "" {
				parts = append(parts, s)
			}
			return true
		}
		content.ForEach(func(_, item gjson.Result) bool {
			if item.Get("type").String() == BlockText {
				parts = append(parts, item.Get("text").String())
			}
			return true
		})
		return true
	})
	return strings.Join(parts, "\n")
}
