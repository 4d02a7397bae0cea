package query

import (
	"encoding/json"
)

const accountQuery = `
query GetAccount($accountNum: bigint!) {
  entity(where: {num: {_eq: $accountNum}, type: {_eq: "ACCOUNT"}}, limit: 1) {
    num
    balance
    evm_address
    created_timestamp
  }
}`

const transactionsQuery = `
query GetRecentTransactions {
  transaction(
    order_by: [{consensus_timestamp: desc}]
    limit: 10
  ) {
    consensus_timestamp
    type
    result
    payer_account_id
    charged_tx_fee
  }
}`

const priceQuery = `
query GetHBARPrice {
  ecosystem_metric(
    where: {name: {_eq: "avg_usd_conversion"}, period: {_eq: "minute"}}
    order_by: [{end_date: desc_nulls_last}]
    limit: 1
  ) {
    total
    end_date
  }
}`

const statsQuery = `
query GetNetworkStats {
  tps: ecosystem_metric(
    where: {name: {_eq: "network_tps"}, period: {_eq: "hour"}}
    order_by: [{end_date: desc_nulls_last}]
    limit: 1
  ) {
    total
    end_date
  }
  activeAccounts: ecosystem_metric(
    where: {name: {_eq: "active_accounts"}, period: {_eq: "day"}}
    order_by: [{end_date: desc_nulls_last}]
    limit: 1
  ) {
    total
    end_date
  }
}`

// template binds a category to its GraphQL text, the validator that builds
// its variables, and the shaper that turns the reply into display fields.
type template struct {
	query     string
	variables func(Request) (map[string]any, error)
	shape     func(Request, json.RawMessage) (DisplayResult, error)
}

var templates = map[Category]template{
	CategoryAccount: {
		query:     accountQuery,
		variables: accountVariables,
		shape:     shapeAccount,
	},
	CategoryTransactions: {
		query:     transactionsQuery,
		variables: noVariables,
		shape:     shapeTransactions,
	},
	CategoryPrice: {
		query:     priceQuery,
		variables: noVariables,
		shape:     shapePrice,
	},
	CategoryStats: {
		query:     statsQuery,
		variables: noVariables,
		shape:     shapeStats,
	},
}

func accountVariables(req Request) (map[string]any, error) {
	num, err := ParseAccountID(req.AccountID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"accountNum": num}, nil
}

func noVariables(Request) (map[string]any, error) {
	return map[string]any{}, nil
}

// lookup resolves the template for a request's category
func lookup(req Request) (template, error) {
	if req.Category == "" {
		return template{}, &RequestError{Message: "Missing queryType parameter"}
	}
	c, err := ParseCategory(string(req.Category))
	if err != nil {
		return template{}, err
	}
	return templates[c], nil
}
