// Package models provides the data structures used throughout the application.
package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money leaving the account from money entering it.
type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// DefaultMerchant is substituted when the model leaves the merchant blank.
const DefaultMerchant = "Unknown"

// DefaultExtractionConfidence is assigned when the model reports no confidence.
const DefaultExtractionConfidence = 0.8

// ExtractedTransaction represents one financial movement recovered from a
// source document. Amount is always positive; the direction lives in Type.
// Balance is the running account balance printed immediately after this
// transaction, or nil when the source document does not show one.
type ExtractedTransaction struct {
	Date                 string           `csv:"Date" json:"date"`
	Merchant             string           `csv:"Merchant" json:"merchant"`
	Description          string           `csv:"Description" json:"description,omitempty"`
	Amount               decimal.Decimal  `csv:"Amount" json:"amount"`
	Type                 TransactionType  `csv:"Type" json:"type"`
	Category             string           `csv:"Category" json:"category,omitempty"`
	CategoryConfidence   float64          `csv:"CategoryConfidence" json:"categoryConfidence,omitempty"`
	VATAmount            decimal.Decimal  `csv:"VATAmount" json:"vatAmount,omitempty"`
	VATRate              decimal.Decimal  `csv:"VATRate" json:"vatRate,omitempty"`
	ExtractionConfidence float64          `csv:"ExtractionConfidence" json:"extractionConfidence"`
	Balance              *decimal.Decimal `csv:"Balance" json:"balance,omitempty"`
}

// IsDebit returns true if the transaction is a debit (outgoing money).
func (t *ExtractedTransaction) IsDebit() bool {
	return t.Type == TypeDebit
}

// IsCredit returns true if the transaction is a credit (incoming money).
func (t *ExtractedTransaction) IsCredit() bool {
	return t.Type == TypeCredit
}

// RawTransaction is the loosely-typed decode target for model output.
// Numeric fields are `any` because the model emits numbers and quoted
// numbers interchangeably; the normalizer coerces them.
type RawTransaction struct {
	Date                 string `json:"date"`
	Merchant             string `json:"merchant"`
	Description          string `json:"description"`
	Amount               any    `json:"amount"`
	Type                 string `json:"type"`
	Category             string `json:"category"`
	CategoryConfidence   any    `json:"categoryConfidence"`
	VATAmount            any    `json:"vatAmount"`
	VATRate              any    `json:"vatRate"`
	ExtractionConfidence any    `json:"extractionConfidence"`
	Balance              any    `json:"balance"`
}

// ModelResponse is the JSON envelope the model is prompted to emit.
type ModelResponse struct {
	Transactions []RawTransaction `json:"transactions"`
}

// ParseAmount parses a loosely-formatted amount value to a decimal.
// It accepts JSON numbers, quoted numbers, and strings carrying currency
// symbols or thousand separators. The boolean reports whether a usable
// value was present.
func ParseAmount(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(val), true
	case json.Number:
		dec, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, false
		}
		return dec, true
	case string:
		return parseAmountString(val)
	default:
		return decimal.Zero, false
	}
}

// parseAmountString strips currency decoration before decimal conversion.
func parseAmountString(s string) (decimal.Decimal, bool) {
	amount := strings.TrimSpace(s)
	if amount == "" || strings.EqualFold(amount, "null") {
		return decimal.Zero, false
	}
	for _, sym := range []string{"CHF", "EUR", "USD", "GBP", "$", "€", "£"} {
		amount = strings.ReplaceAll(amount, sym, "")
	}
	amount = strings.ReplaceAll(amount, " ", "")
	// Thousand separators
	amount = strings.ReplaceAll(amount, "'", "")
	if strings.Contains(amount, ".") {
		amount = strings.ReplaceAll(amount, ",", "")
	} else {
		amount = strings.ReplaceAll(amount, ",", ".")
	}
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, false
	}
	return dec, true
}

// ParseConfidence coerces a model-reported probability to a float in [0,1].
func ParseConfidence(v any) (float64, bool) {
	dec, ok := ParseAmount(v)
	if !ok {
		return 0, false
	}
	f, _ := dec.Float64()
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f, true
}
