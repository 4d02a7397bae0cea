// Package query turns a category request into a Hgraph GraphQL query and
// reshapes the reply into a display-ready result.
package query

import "fmt"

// Category selects which predefined query template runs
type Category string

const (
	// CategoryAccount looks up a single account by its numeric id
	CategoryAccount Category = "account"
	// CategoryTransactions lists the most recent network transactions
	CategoryTransactions Category = "transactions"
	// CategoryPrice reads the latest HBAR/USD conversion metric
	CategoryPrice Category = "price"
	// CategoryStats reads the latest TPS and active-account metrics
	CategoryStats Category = "stats"
)

// Categories returns every supported category in display order
func Categories() []Category {
	return []Category{CategoryAccount, CategoryTransactions, CategoryPrice, CategoryStats}
}

// ParseCategory validates a discriminator string
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := templates[c]; !ok {
		return "", &RequestError{Message: fmt.Sprintf("Unsupported queryType: %s", s)}
	}
	return c, nil
}

// String implements fmt.Stringer
func (c Category) String() string {
	return string(c)
}
