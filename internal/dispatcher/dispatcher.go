// Package dispatcher is the client side of the proxy: it issues one request
// per user action and keeps separate render state for every category.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"resty.dev/v3"

	"hederaquery/internal/query"
	"hederaquery/internal/upstream"
)

const queryPath = "/api/query"

var (
	// ErrEmptyAccountID is returned, without any network call, for a blank account id
	ErrEmptyAccountID = errors.New("account id is empty")
	// ErrEmptyPrompt is returned, without any network call, for a blank question
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrSuperseded is returned when a newer call for the same category was issued
	// before this one completed; its reply was dropped.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// State is the render state of one category
type State struct {
	Loading  bool
	Envelope *query.Envelope
	Err      string
	// Seq is the sequence number of the latest call issued for the category
	Seq uint64
}

// Dispatcher sends queries to the proxy
type Dispatcher struct {
	client *resty.Client

	mu     sync.Mutex
	states map[query.Category]*State
}

// New creates a dispatcher for the proxy at proxyURL
func New(proxyURL string) *Dispatcher {
	return &Dispatcher{
		client: upstream.NewHTTPClient(strings.TrimRight(proxyURL, "/"), nil),
		states: make(map[query.Category]*State),
	}
}

// Dispatch runs a structured query for req.Category
func (d *Dispatcher) Dispatch(ctx context.Context, req query.Request) (State, error) {
	if req.Category == query.CategoryAccount && strings.TrimSpace(req.AccountID) == "" {
		return d.Snapshot(req.Category), ErrEmptyAccountID
	}
	req.AccountID = strings.TrimSpace(req.AccountID)
	req.Prompt = ""

	return d.do(ctx, req.Category, req)
}

// Ask sends a natural-language question to an AI-mediated proxy and stores
// the answer under category c.
func (d *Dispatcher) Ask(ctx context.Context, c query.Category, prompt string) (State, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return d.Snapshot(c), ErrEmptyPrompt
	}

	return d.do(ctx, c, query.Request{Prompt: prompt})
}

// Snapshot returns a copy of the current state of category c
func (d *Dispatcher) Snapshot(c query.Category) State {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.states[c]; ok {
		return *s
	}
	return State{}
}

func (d *Dispatcher) do(ctx context.Context, c query.Category, body query.Request) (State, error) {
	seq := d.begin(c)

	env, err := d.send(ctx, body)

	return d.finish(c, seq, env, err)
}

// begin marks c as loading and clears the previous result
func (d *Dispatcher) begin(c query.Category) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.states[c]
	if !ok {
		s = &State{}
		d.states[c] = s
	}
	s.Seq++
	s.Loading = true
	s.Envelope = nil
	s.Err = ""

	return s.Seq
}

// finish stores the outcome of call seq unless a newer call was issued since
func (d *Dispatcher) finish(c query.Category, seq uint64, env *query.Envelope, err error) (State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.states[c]
	if s.Seq != seq {
		return *s, ErrSuperseded
	}

	s.Loading = false
	if err != nil {
		s.Envelope = nil
		s.Err = err.Error()
		return *s, nil
	}

	s.Envelope = env
	s.Err = env.Error

	return *s, nil
}

func (d *Dispatcher) send(ctx context.Context, body query.Request) (*query.Envelope, error) {
	var env query.Envelope

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&env).
		SetError(&env).
		Post(queryPath)

	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() && env.Error == "" {
		env.Error = fmt.Sprintf("proxy returned status %d", resp.StatusCode())
	}

	return &env, nil
}
