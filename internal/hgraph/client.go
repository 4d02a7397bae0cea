// Package hgraph is a minimal client for the Hgraph Hedera GraphQL API.
package hgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"resty.dev/v3"

	"hederaquery/internal/upstream"
)

// DefaultBaseURL is the Hedera mainnet GraphQL endpoint
const DefaultBaseURL = "https://mainnet.hedera.api.hgraph.io/v1/graphql"

// Request is the body of a GraphQL POST
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Error is a single entry of a GraphQL errors array
type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Response is the raw GraphQL reply. Data is kept undecoded so callers can both
// shape it and echo it back verbatim.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors,omitempty"`
}

// Client submits queries to the GraphQL endpoint with a static API key
type Client struct {
	client *resty.Client
}

// NewClient creates a new GraphQL client
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		client: upstream.NewHTTPClient(baseURL, map[string]string{
			"x-api-key": apiKey,
		}),
	}
}

// Execute posts a query with its variables and returns the reply.
// A reply carrying GraphQL errors is returned together with an
// upstream query error holding the first error message.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	if variables == nil {
		variables = map[string]any{}
	}

	var result Response

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(Request{Query: query, Variables: variables}).
		SetResult(&result).
		SetError(&result).
		Post("")

	if err != nil {
		return nil, fmt.Errorf("failed to execute graphql query: %w", upstream.ClassifyTransportError(err))
	}

	if len(result.Errors) > 0 {
		return &result, upstream.NewQueryError(result.Errors[0].Message)
	}

	if !resp.IsSuccess() {
		return nil, upstream.ClassifyHTTPError(resp.StatusCode())
	}

	if len(result.Data) == 0 || bytes.Equal(result.Data, []byte("null")) {
		return nil, upstream.NewValidationError("graphql response contained no data")
	}

	return &result, nil
}
