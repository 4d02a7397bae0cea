package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// maxTransactions bounds the transactions list regardless of what the upstream returns
const maxTransactions = 10

// isoMillis matches the millisecond ISO-8601 form browsers produce
const isoMillis = "2006-01-02T15:04:05.000Z"

var (
	tinybarsPerHbar = decimal.NewFromInt(100_000_000)
	// avg_usd_conversion totals are stored in 1/100000 of a US dollar
	priceScale = decimal.NewFromInt(100_000)
)

type entityRecord struct {
	Num              decimal.NullDecimal `json:"num"`
	Balance          decimal.NullDecimal `json:"balance"`
	EVMAddress       *string             `json:"evm_address"`
	CreatedTimestamp decimal.NullDecimal `json:"created_timestamp"`
}

type transactionRecord struct {
	ConsensusTimestamp decimal.NullDecimal `json:"consensus_timestamp"`
	Type               json.RawMessage     `json:"type"`
	Result             json.RawMessage     `json:"result"`
	PayerAccountID     decimal.NullDecimal `json:"payer_account_id"`
	ChargedTxFee       decimal.NullDecimal `json:"charged_tx_fee"`
}

type metricRecord struct {
	Total   decimal.NullDecimal `json:"total"`
	EndDate *string             `json:"end_date"`
}

func shapeAccount(req Request, data json.RawMessage) (DisplayResult, error) {
	var payload struct {
		Entity []entityRecord `json:"entity"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode account response: %w", err)
	}

	if len(payload.Entity) == 0 {
		accountID := NotAvailable
		if num, err := ParseAccountID(req.AccountID); err == nil {
			accountID = FormatAccountID(num)
		}
		return DisplayResult{
			"accountId":  accountID,
			"balance":    NotAvailable,
			"balanceRaw": NotAvailable,
			"evmAddress": NotAvailable,
			"createdAt":  NotAvailable,
		}, nil
	}

	account := payload.Entity[0]
	result := DisplayResult{
		"accountId":  accountOrNA(account.Num),
		"balance":    NotAvailable,
		"balanceRaw": NotAvailable,
		"evmAddress": stringOrNA(account.EVMAddress),
		"createdAt":  timestampOrNA(account.CreatedTimestamp),
	}
	if account.Balance.Valid {
		result["balance"] = FormatHbar(account.Balance.Decimal, 2)
		result["balanceRaw"] = json.Number(account.Balance.Decimal.String())
	}

	return result, nil
}

func shapeTransactions(_ Request, data json.RawMessage) (DisplayResult, error) {
	var payload struct {
		Transaction []transactionRecord `json:"transaction"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode transactions response: %w", err)
	}

	records := payload.Transaction
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].ConsensusTimestamp, records[j].ConsensusTimestamp
		if !a.Valid {
			return false
		}
		if !b.Valid {
			return true
		}
		return a.Decimal.GreaterThan(b.Decimal)
	})
	if len(records) > maxTransactions {
		records = records[:maxTransactions]
	}

	transactions := make([]DisplayResult, 0, len(records))
	for _, tx := range records {
		fee := NotAvailable
		if tx.ChargedTxFee.Valid {
			fee = FormatHbar(tx.ChargedTxFee.Decimal, 8)
		}
		transactions = append(transactions, DisplayResult{
			"timestamp":    timestampOrNA(tx.ConsensusTimestamp),
			"type":         rawOrNA(tx.Type),
			"result":       rawOrNA(tx.Result),
			"payerAccount": accountOrNA(tx.PayerAccountID),
			"fee":          fee,
		})
	}

	return DisplayResult{"transactions": transactions}, nil
}

func shapePrice(_ Request, data json.RawMessage) (DisplayResult, error) {
	var payload struct {
		EcosystemMetric []metricRecord `json:"ecosystem_metric"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	result := DisplayResult{
		"hbarPrice": NotAvailable,
		"timestamp": NotAvailable,
	}
	if len(payload.EcosystemMetric) == 0 {
		return result, nil
	}

	latest := payload.EcosystemMetric[0]
	if latest.Total.Valid {
		result["hbarPrice"] = "$" + latest.Total.Decimal.Div(priceScale).StringFixed(5)
	}
	result["timestamp"] = stringOrNA(latest.EndDate)

	return result, nil
}

func shapeStats(_ Request, data json.RawMessage) (DisplayResult, error) {
	var payload struct {
		TPS            []metricRecord `json:"tps"`
		ActiveAccounts []metricRecord `json:"activeAccounts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}

	result := DisplayResult{
		"tps":            NotAvailable,
		"activeAccounts": NotAvailable,
		"lastUpdated":    NotAvailable,
	}
	if len(payload.TPS) > 0 {
		result["tps"] = numberOrNA(payload.TPS[0].Total)
		result["lastUpdated"] = stringOrNA(payload.TPS[0].EndDate)
	}
	if len(payload.ActiveAccounts) > 0 {
		result["activeAccounts"] = numberOrNA(payload.ActiveAccounts[0].Total)
	}

	return result, nil
}

// FormatHbar converts tinybars to HBAR with a fixed number of decimals and the unit suffix
func FormatHbar(tinybars decimal.Decimal, places int32) string {
	return tinybars.Div(tinybarsPerHbar).StringFixed(places) + " HBAR"
}

// FormatTimestamp converts a nanosecond Hedera timestamp to a millisecond ISO-8601 UTC string
func FormatTimestamp(nanos int64) string {
	return time.Unix(0, nanos).UTC().Format(isoMillis)
}

func timestampOrNA(d decimal.NullDecimal) any {
	n, ok := int64Of(d)
	if !ok {
		return NotAvailable
	}
	return FormatTimestamp(n)
}

func accountOrNA(d decimal.NullDecimal) any {
	n, ok := int64Of(d)
	if !ok {
		return NotAvailable
	}
	return FormatAccountID(n)
}

// int64Of reports false for null values and for values outside the int64 range
func int64Of(d decimal.NullDecimal) (int64, bool) {
	if !d.Valid || !d.Decimal.BigInt().IsInt64() {
		return 0, false
	}
	return d.Decimal.IntPart(), true
}

func numberOrNA(d decimal.NullDecimal) any {
	if !d.Valid {
		return NotAvailable
	}
	return json.Number(d.Decimal.String())
}

func stringOrNA(s *string) any {
	if s == nil || *s == "" {
		return NotAvailable
	}
	return *s
}

func rawOrNA(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return NotAvailable
	}
	return raw
}
