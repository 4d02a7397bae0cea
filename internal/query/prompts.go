package query

import (
	"fmt"
	"strings"
)

var prompts = map[Category]string{
	CategoryAccount:      "Get account balance, details, and creation date for Hedera account %s. Format as JSON with balance in HBAR, account ID, EVM address if available, and creation timestamp.",
	CategoryTransactions: "Show the 10 most recent successful transactions on Hedera mainnet. Include transaction type, timestamp, and payer account.",
	CategoryPrice:        "What is the current HBAR price in USD?",
	CategoryStats:        "Show current Hedera network statistics including TPS and active accounts.",
}

// PromptFor returns the natural-language question the AI-mediated variant
// asks for a category.
func PromptFor(c Category, accountID string) (string, error) {
	tmpl, ok := prompts[c]
	if !ok {
		return "", &RequestError{Message: fmt.Sprintf("Unsupported queryType: %s", c)}
	}
	if c != CategoryAccount {
		return tmpl, nil
	}

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", &RequestError{Message: "Missing accountId parameter"}
	}
	return fmt.Sprintf(tmpl, accountID), nil
}
