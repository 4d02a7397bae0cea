package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hederaquery/internal/assistant"
	"hederaquery/internal/hgraph"
	"hederaquery/internal/query"
	"hederaquery/internal/server"
	"hederaquery/internal/testutil"
)

func newProxy(t *testing.T, runner query.Runner) string {
	t.Helper()
	srv := httptest.NewServer(server.New(runner, "direct", nil, nil).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestDispatch_Success(t *testing.T) {
	fake := testutil.NewHgraphServer(t, testutil.DefaultHgraphResponses())
	d := New(newProxy(t, query.NewDirect(hgraph.NewClient("k", fake.URL))))

	state, err := d.Dispatch(context.Background(), query.Request{Category: query.CategoryAccount, AccountID: " 0.0.123456 "})
	require.NoError(t, err)

	assert.False(t, state.Loading)
	assert.Empty(t, state.Err)
	require.NotNil(t, state.Envelope)
	assert.Equal(t, "1.50 HBAR", state.Envelope.Data["balance"])
	assert.Equal(t, query.SourceHgraph, state.Envelope.Source)
	assert.Equal(t, uint64(1), state.Seq)

	assert.Equal(t, state, d.Snapshot(query.CategoryAccount))
	assert.Equal(t, State{}, d.Snapshot(query.CategoryPrice), "other categories are untouched")
}

func TestDispatch_EmptyAccountIDMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	runner := &testutil.MockRunner{RunFunc: func(ctx context.Context, req query.Request) (*query.Envelope, error) {
		calls.Add(1)
		return &query.Envelope{}, nil
	}}
	d := New(newProxy(t, runner))

	state, err := d.Dispatch(context.Background(), query.Request{Category: query.CategoryAccount, AccountID: "   "})
	assert.ErrorIs(t, err, ErrEmptyAccountID)
	assert.Equal(t, State{}, state)
	assert.Zero(t, calls.Load())
}

func TestDispatch_ProxyErrorIsStored(t *testing.T) {
	runner := testutil.NewMockRunner(nil, &query.RequestError{Message: "Unsupported queryType: blocks"})
	d := New(newProxy(t, runner))

	state, err := d.Dispatch(context.Background(), query.Request{Category: "blocks"})
	require.NoError(t, err)

	assert.False(t, state.Loading)
	assert.Equal(t, "Unsupported queryType: blocks", state.Err)
	require.NotNil(t, state.Envelope)
	assert.Equal(t, "Unsupported queryType: blocks", state.Envelope.Error)
}

func TestDispatch_TransportErrorIsStored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	d := New(url)
	state, err := d.Dispatch(context.Background(), query.Request{Category: query.CategoryPrice})
	require.NoError(t, err)

	assert.False(t, state.Loading)
	assert.Nil(t, state.Envelope)
	assert.NotEmpty(t, state.Err)
}

func TestDispatch_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	state, err := New(srv.URL).Dispatch(context.Background(), query.Request{Category: query.CategoryStats})
	require.NoError(t, err)
	assert.Equal(t, "proxy returned status 502", state.Err)
}

func TestDispatch_SendsStructuredBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {}, "rawData": {}, "source": "test"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/").Dispatch(context.Background(), query.Request{Category: query.CategoryTransactions, Prompt: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"queryType": "transactions"}, got)
}

func TestDispatch_StaleReplyIsDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	runner := &testutil.MockRunner{RunFunc: func(ctx context.Context, req query.Request) (*query.Envelope, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return &query.Envelope{Data: query.DisplayResult{"hbarPrice": "old"}}, nil
		}
		return &query.Envelope{Data: query.DisplayResult{"hbarPrice": "new"}}, nil
	}}
	d := New(newProxy(t, runner))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = d.Dispatch(context.Background(), query.Request{Category: query.CategoryPrice})
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never reached the proxy")
	}
	assert.True(t, d.Snapshot(query.CategoryPrice).Loading)

	second, err := d.Dispatch(context.Background(), query.Request{Category: query.CategoryPrice})
	require.NoError(t, err)
	assert.Equal(t, "new", second.Envelope.Data["hbarPrice"])

	close(release)
	wg.Wait()

	assert.ErrorIs(t, firstErr, ErrSuperseded)
	final := d.Snapshot(query.CategoryPrice)
	assert.False(t, final.Loading)
	assert.Equal(t, "new", final.Envelope.Data["hbarPrice"])
	assert.Equal(t, uint64(2), final.Seq)
}

func TestAsk_OfflineAssistant(t *testing.T) {
	d := New(newProxy(t, assistant.New(nil)))

	state, err := d.Ask(context.Background(), query.CategoryPrice, "What is the current HBAR price in USD?")
	require.NoError(t, err)

	require.NotNil(t, state.Envelope)
	assert.Equal(t, []string{assistant.OfflineMessage}, state.Envelope.TextResponses)
	assert.True(t, state.Envelope.IsAssistant())

	_, err = d.Ask(context.Background(), query.CategoryPrice, " ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"idle", State{}, []string{"HBAR Price", "No data yet"}},
		{"loading", State{Loading: true}, []string{"Loading..."}},
		{"error", State{Err: "Method not allowed"}, []string{"Error: Method not allowed"}},
		{
			"data",
			State{Envelope: &query.Envelope{Data: query.DisplayResult{"hbarPrice": "$0.05123"}, Source: query.SourceHgraph}},
			[]string{`"hbarPrice": "$0.05123"`, `"source": "Hgraph GraphQL API"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, query.CategoryPrice, tt.state))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
