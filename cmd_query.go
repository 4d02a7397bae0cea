package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hederaquery/internal/config"
	"hederaquery/internal/coordinator"
	"hederaquery/internal/dispatcher"
	"hederaquery/internal/query"
)

var (
	accountID string
	assist    bool
	proxyURL  string
)

var queryCmd = &cobra.Command{
	Use:   "query [category|all] [accountId]",
	Short: "Query a running proxy and print the result cards",
	Long: `Sends structured queries to the proxy at PROXY_URL (or --proxy).

Categories: account, transactions, price, stats. "all" refreshes every card
concurrently; the account card needs --account.

Example:
  hederaquery query account 0.0.123456
  hederaquery query all --account 0.0.123456 --assist`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runQuery,
}

var askCmd = &cobra.Command{
	Use:   "ask [category] [question...]",
	Short: "Ask an assistant-mode proxy a question",
	Long: `Sends a natural-language question to a proxy running in assistant mode.
The answer is stored and printed under the given category card.

Example:
  hederaquery ask price "What is the current HBAR price in USD?"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	queryCmd.Flags().StringVar(&accountID, "account", "", "Hedera account id, e.g. 0.0.123456")
	queryCmd.Flags().BoolVar(&assist, "assist", false, "Ask the default question for each category instead of a structured query")

	for _, c := range []*cobra.Command{queryCmd, askCmd} {
		c.Flags().StringVar(&proxyURL, "proxy", "", "Proxy base URL (overrides PROXY_URL)")
	}
}

func newDispatcher() (*dispatcher.Dispatcher, error) {
	url := proxyURL
	if url == "" {
		cfg, err := config.LoadClient()
		if err != nil {
			return nil, err
		}
		url = cfg.ProxyURL
	}
	logger.Debug("using proxy", zap.String("url", url))
	return dispatcher.New(url), nil
}

// actionsFor expands the command arguments into coordinator actions
func actionsFor(args []string) ([]coordinator.Action, error) {
	id := accountID
	if len(args) > 1 {
		id = args[1]
	}

	if strings.EqualFold(args[0], "all") {
		actions := make([]coordinator.Action, 0, len(query.Categories()))
		for _, c := range query.Categories() {
			if c == query.CategoryAccount && strings.TrimSpace(id) == "" {
				continue
			}
			actions = append(actions, coordinator.Action{
				Request: query.Request{Category: c, AccountID: id},
				Assist:  assist,
			})
		}
		return actions, nil
	}

	c, err := query.ParseCategory(args[0])
	if err != nil {
		return nil, err
	}
	return []coordinator.Action{{
		Request: query.Request{Category: c, AccountID: id},
		Assist:  assist,
	}}, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	actions, err := actionsFor(args)
	if err != nil {
		return err
	}

	d, err := newDispatcher()
	if err != nil {
		return err
	}

	return runActions(cmd, d, actions)
}

func runAsk(cmd *cobra.Command, args []string) error {
	c, err := query.ParseCategory(args[0])
	if err != nil {
		return err
	}

	d, err := newDispatcher()
	if err != nil {
		return err
	}

	return runActions(cmd, d, []coordinator.Action{{
		Request: query.Request{Category: c, Prompt: strings.Join(args[1:], " ")},
		Assist:  true,
	}})
}

func runActions(cmd *cobra.Command, d coordinator.Dispatcher, actions []coordinator.Action) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	results, err := coordinator.New(d, actions, cmd.OutOrStdout()).Run(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, r := range results {
		if r.Error != nil || r.State.Err != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(results))
	}
	return nil
}
