package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"hederaquery/internal/hgraph"
	"hederaquery/internal/query"
)

// Canned Hgraph replies keyed by GraphQL operation name
const (
	AccountResponse = `{"data": {"entity": [{
		"num": 123456,
		"balance": 150000000,
		"evm_address": "0x000000000000000000000000000000000001e240",
		"created_timestamp": 1568411631396440000
	}]}}`

	TransactionsResponse = `{"data": {"transaction": [
		{"consensus_timestamp": 1700000002000000000, "type": 14, "result": 22, "payer_account_id": 800, "charged_tx_fee": 100000},
		{"consensus_timestamp": 1700000001000000000, "type": 14, "result": 22, "payer_account_id": 801, "charged_tx_fee": 200000}
	]}}`

	PriceResponse = `{"data": {"ecosystem_metric": [{"total": 5123, "end_date": "2025-10-01T12:01:00+00:00"}]}}`

	StatsResponse = `{"data": {
		"tps": [{"total": 1234, "end_date": "2025-10-01T12:00:00+00:00"}],
		"activeAccounts": []
	}}`
)

// DefaultHgraphResponses answers every category with a successful reply
func DefaultHgraphResponses() map[string]string {
	return map[string]string{
		"GetAccount":            AccountResponse,
		"GetRecentTransactions": TransactionsResponse,
		"GetHBARPrice":          PriceResponse,
		"GetNetworkStats":       StatsResponse,
	}
}

// HgraphServer is a fake GraphQL endpoint that records what it receives
type HgraphServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []hgraph.Request
	apiKeys  []string
}

// NewHgraphServer starts a fake endpoint replying with responses[operation].
// Unknown operations get a GraphQL error. The server is closed by t.Cleanup.
func NewHgraphServer(t testing.TB, responses map[string]string) *HgraphServer {
	t.Helper()

	s := &HgraphServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req hgraph.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.apiKeys = append(s.apiKeys, r.Header.Get("x-api-key"))
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		for op, body := range responses {
			if strings.Contains(req.Query, "query "+op) {
				w.Write([]byte(body))
				return
			}
		}
		w.Write([]byte(`{"errors": [{"message": "unknown operation"}]}`))
	}))
	t.Cleanup(s.Close)

	return s
}

// Requests returns every GraphQL request received so far
func (s *HgraphServer) Requests() []hgraph.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hgraph.Request(nil), s.requests...)
}

// APIKeys returns the x-api-key header of every request received so far
func (s *HgraphServer) APIKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.apiKeys...)
}

// MockRunner is a mock implementation of query.Runner for testing
type MockRunner struct {
	RunFunc func(ctx context.Context, req query.Request) (*query.Envelope, error)
}

// Run implements query.Runner
func (m *MockRunner) Run(ctx context.Context, req query.Request) (*query.Envelope, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, req)
	}
	return &query.Envelope{Data: query.DisplayResult{}}, nil
}

// NewMockRunner creates a runner that always returns env and err
func NewMockRunner(env *query.Envelope, err error) query.Runner {
	return &MockRunner{
		RunFunc: func(ctx context.Context, req query.Request) (*query.Envelope, error) {
			return env, err
		},
	}
}
