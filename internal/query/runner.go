package query

import (
	"context"

	"hederaquery/internal/hgraph"
)

// Runner executes one proxied query. Both proxy variants implement it.
type Runner interface {
	Run(ctx context.Context, req Request) (*Envelope, error)
}

// Executor submits a GraphQL query upstream
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any) (*hgraph.Response, error)
}

// Direct runs category templates straight against the GraphQL API
type Direct struct {
	executor Executor
}

// NewDirect creates a runner for the direct-query variant
func NewDirect(executor Executor) *Direct {
	return &Direct{executor: executor}
}

// Run validates the request, submits its template and shapes the reply.
// Errors reported by the upstream are returned unwrapped so their message
// reaches the caller as-is.
func (d *Direct) Run(ctx context.Context, req Request) (*Envelope, error) {
	tmpl, err := lookup(req)
	if err != nil {
		return nil, err
	}

	variables, err := tmpl.variables(req)
	if err != nil {
		return nil, err
	}

	resp, err := d.executor.Execute(ctx, tmpl.query, variables)
	if err != nil {
		return nil, err
	}

	data, err := tmpl.shape(req, resp.Data)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Data:    data,
		RawData: resp.Data,
		Source:  SourceHgraph,
	}, nil
}
