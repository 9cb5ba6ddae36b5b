// Package normalize converts raw model output into validated transactions.
// The model is allowed to be sloppy; all repair happens here so downstream
// components can rely on clean, typed values.
package normalize

import (
	"strings"

	"fjacquet/statement-extract/internal/dateutils"
	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

// Normalizer turns RawTransaction values into ExtractedTransaction values,
// applying defaults and dropping rows that cannot be salvaged.
type Normalizer struct {
	log logging.Logger
}

// New creates a Normalizer.
func New(log logging.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Transactions normalizes a batch. Rows with a non-positive amount or an
// unusable date are dropped rather than propagated as errors: a partial
// result beats no result.
func (n *Normalizer) Transactions(raw []models.RawTransaction) []models.ExtractedTransaction {
	out := make([]models.ExtractedTransaction, 0, len(raw))
	for i, r := range raw {
		tx, ok := n.one(r)
		if !ok {
			n.log.WithFields(
				logging.Field{Key: logging.FieldIndex, Value: i},
				logging.Field{Key: "date", Value: r.Date},
			).Debug("Dropping unusable transaction row")
			continue
		}
		out = append(out, tx)
	}
	return out
}

func (n *Normalizer) one(r models.RawTransaction) (models.ExtractedTransaction, bool) {
	var tx models.ExtractedTransaction

	amount, _ := models.ParseAmount(r.Amount)
	negative := amount.IsNegative()
	amount = amount.Abs()

	// A negative amount is a stronger debit signal than whatever the model
	// put in the type field.
	txType := models.TransactionType(strings.ToLower(strings.TrimSpace(r.Type)))
	if txType != models.TypeDebit && txType != models.TypeCredit {
		txType = models.TypeDebit
	}
	if negative {
		txType = models.TypeDebit
	}

	tx.Date = normalizeDate(r.Date)
	tx.Amount = amount
	tx.Type = txType

	tx.Merchant = strings.TrimSpace(r.Merchant)
	if tx.Merchant == "" {
		tx.Merchant = models.DefaultMerchant
	}

	tx.Description = strings.TrimSpace(r.Description)
	if strings.EqualFold(tx.Description, tx.Merchant) {
		tx.Description = ""
	}

	tx.Category = strings.TrimSpace(r.Category)
	if c, ok := models.ParseConfidence(r.CategoryConfidence); ok {
		tx.CategoryConfidence = c
	}

	if v, ok := models.ParseAmount(r.VATAmount); ok {
		tx.VATAmount = v.Abs()
	}
	if v, ok := models.ParseAmount(r.VATRate); ok {
		tx.VATRate = v
	}

	tx.ExtractionConfidence = models.DefaultExtractionConfidence
	if c, ok := models.ParseConfidence(r.ExtractionConfidence); ok {
		tx.ExtractionConfidence = c
	}

	// A missing or garbled balance must never kill the row; the verifier
	// treats nil as "not visible on the statement".
	if r.Balance != nil {
		if b, ok := models.ParseAmount(r.Balance); ok {
			tx.Balance = &b
		}
	}

	if tx.Amount.Sign() <= 0 {
		return tx, false
	}
	if tx.Date == "" || !dateutils.IsISODate(tx.Date) {
		return tx, false
	}
	return tx, true
}

// normalizeDate coerces whatever the model produced into ISO form, or
// returns the empty string when it cannot.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if dateutils.IsISODate(s) {
		return s
	}
	t, err := dateutils.ParseDate(s)
	if err != nil {
		return ""
	}
	return dateutils.FormatISO(t)
}
