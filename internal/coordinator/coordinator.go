package coordinator

import (
	"context"
	"fmt"
	"io"
	"sync"

	"hederaquery/internal/dispatcher"
	"hederaquery/internal/query"
)

// Dispatcher is the part of dispatcher.Dispatcher the coordinator drives
type Dispatcher interface {
	Dispatch(ctx context.Context, req query.Request) (dispatcher.State, error)
	Ask(ctx context.Context, c query.Category, prompt string) (dispatcher.State, error)
}

// Action is one card to refresh. Assist actions go to the AI-mediated proxy;
// when Request.Prompt is empty the default prompt for the category is asked.
type Action struct {
	Request query.Request
	Assist  bool
}

// Result is the outcome of one action
type Result struct {
	Category query.Category
	State    dispatcher.State
	Error    error
}

// Coordinator refreshes several categories concurrently
type Coordinator struct {
	dispatcher Dispatcher
	actions    []Action
	out        io.Writer
}

// New creates a new Coordinator. Cards are rendered to out as they complete;
// a nil out disables rendering.
func New(d Dispatcher, actions []Action, out io.Writer) *Coordinator {
	return &Coordinator{
		dispatcher: d,
		actions:    actions,
		out:        out,
	}
}

// Run executes all actions concurrently, one goroutine each, and returns
// their results in completion order. Per-action failures are reported in
// the results, not as the returned error.
func (c *Coordinator) Run(ctx context.Context) ([]Result, error) {
	if len(c.actions) == 0 {
		return nil, fmt.Errorf("no actions configured")
	}

	resultChan := make(chan Result, len(c.actions))

	var wg sync.WaitGroup

	for _, a := range c.actions {
		wg.Add(1)
		go func(a Action) {
			defer wg.Done()

			state, err := c.run(ctx, a)

			resultChan <- Result{
				Category: a.Request.Category,
				State:    state,
				Error:    err,
			}
		}(a)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]Result, 0, len(c.actions))
	for result := range resultChan {
		results = append(results, result)
		if err := c.render(result); err != nil {
			return results, fmt.Errorf("failed to render %s: %w", result.Category, err)
		}
	}

	return results, nil
}

func (c *Coordinator) run(ctx context.Context, a Action) (dispatcher.State, error) {
	if !a.Assist {
		return c.dispatcher.Dispatch(ctx, a.Request)
	}

	prompt := a.Request.Prompt
	if prompt == "" {
		p, err := query.PromptFor(a.Request.Category, a.Request.AccountID)
		if err != nil {
			return dispatcher.State{}, err
		}
		prompt = p
	}

	return c.dispatcher.Ask(ctx, a.Request.Category, prompt)
}

func (c *Coordinator) render(r Result) error {
	if c.out == nil {
		return nil
	}

	state := r.State
	if r.Error != nil && state.Err == "" {
		state.Loading = false
		state.Err = r.Error.Error()
	}

	if err := dispatcher.Render(c.out, r.Category, state); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.out)
	return err
}
