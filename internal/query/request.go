package query

import (
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is substituted for any display field the upstream did not supply
const NotAvailable = "N/A"

// Request is a single query as posted to the proxy. Category drives the direct
// variant, Prompt drives the AI-mediated one.
type Request struct {
	Category  Category `json:"queryType,omitempty"`
	AccountID string   `json:"accountId,omitempty"`
	Prompt    string   `json:"query,omitempty"`
}

// RequestError is a problem with the inbound request itself. Its message is
// returned to the caller unchanged.
type RequestError struct {
	Message string
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return e.Message
}

// ParseAccountID extracts the numeric account number from a dotted Hedera
// identifier ("0.0.123456") or a bare number ("123456"). Only shard 0 and
// realm 0 are queried, so any other shard or realm is rejected, as are
// non-canonical forms such as leading zeros or signs.
func ParseAccountID(id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, &RequestError{Message: "Missing accountId parameter"}
	}
	invalid := &RequestError{Message: fmt.Sprintf("Invalid accountId: %s", id)}

	parts := strings.Split(id, ".")
	switch len(parts) {
	case 1:
	case 3:
		if parts[0] != "0" || parts[1] != "0" {
			return 0, invalid
		}
	default:
		return 0, invalid
	}

	digits := parts[len(parts)-1]
	if !isCanonicalNumber(digits) {
		return 0, invalid
	}
	num, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, invalid
	}

	return num, nil
}

// isCanonicalNumber reports whether s is a base-10 natural number without
// sign or leading zeros
func isCanonicalNumber(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatAccountID renders an account number in dotted form
func FormatAccountID(num int64) string {
	return fmt.Sprintf("0.0.%d", num)
}
