package balance

import (
	"github.com/shopspring/decimal"

	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

// Correction confidence levels. An amount fix confirmed by the balance
// column is trustworthy; a large fix or a type conflict is not.
const (
	confidenceSmallFix     = 0.70
	confidenceLargeFix     = 0.40
	confidenceTypeConflict = 0.30
)

// Correction describes one adjustment derived from the balance chain.
type Correction struct {
	Index           int             `json:"index"`
	OriginalAmount  decimal.Decimal `json:"originalAmount"`
	CorrectedAmount decimal.Decimal `json:"correctedAmount"`
	OriginalType    models.TransactionType
	InferredType    models.TransactionType
	Confidence      float64 `json:"confidence"`
	Applied         bool    `json:"applied"`
	NeedsReview     bool    `json:"needsReview"`
	Note            string  `json:"note,omitempty"`
}

// Corrector repairs transaction amounts using consecutive visible
// balances as ground truth.
type Corrector struct {
	maxAutoAmount decimal.Decimal
	log           logging.Logger
}

// NewCorrector creates a Corrector. Differences strictly below
// maxAutoAmount are applied at full confidence; anything at or above it
// is still applied but flagged for review.
func NewCorrector(maxAutoAmount float64, log logging.Logger) *Corrector {
	return &Corrector{
		maxAutoAmount: decimal.NewFromFloat(maxAutoAmount),
		log:           log,
	}
}

// Apply inspects each broken chain link and derives the amount the
// balance column implies. The input slice is not modified; corrections
// operate on a copy so callers keep the uncorrected original.
func (c *Corrector) Apply(txs []models.ExtractedTransaction, result VerificationResult, opening *decimal.Decimal) ([]models.ExtractedTransaction, []Correction) {
	out := make([]models.ExtractedTransaction, len(txs))
	copy(out, txs)

	var corrections []Correction
	for _, link := range result.Links {
		if link.Valid {
			continue
		}
		i := link.Index
		prev := previousBalance(out, i, opening)
		if prev == nil {
			continue
		}

		actual := *out[i].Balance
		delta := actual.Sub(*prev)
		inferredType := models.TypeDebit
		if delta.Sign() >= 0 {
			inferredType = models.TypeCredit
		}
		impliedAmount := delta.Abs().Round(2)

		corr := Correction{
			Index:          i,
			OriginalAmount: out[i].Amount,
			OriginalType:   out[i].Type,
			InferredType:   inferredType,
		}

		switch {
		case inferredType != out[i].Type:
			// The balance movement contradicts the transaction
			// direction. Guessing which one is wrong would be worse
			// than leaving it, so only the confidence drops.
			corr.CorrectedAmount = out[i].Amount
			corr.Confidence = confidenceTypeConflict
			corr.NeedsReview = true
			corr.Note = "balance movement contradicts transaction type"
		case impliedAmount.Sub(out[i].Amount).Abs().LessThan(c.maxAutoAmount):
			corr.CorrectedAmount = impliedAmount
			corr.Confidence = confidenceSmallFix
			corr.Applied = true
		default:
			corr.CorrectedAmount = impliedAmount
			corr.Confidence = confidenceLargeFix
			corr.Applied = true
			corr.NeedsReview = true
			corr.Note = "large correction derived from balance chain"
		}

		if corr.Applied {
			out[i].Amount = corr.CorrectedAmount
			c.log.WithFields(
				logging.Field{Key: logging.FieldIndex, Value: i},
				logging.Field{Key: "original", Value: corr.OriginalAmount.String()},
				logging.Field{Key: "corrected", Value: corr.CorrectedAmount.String()},
			).Info("Corrected transaction amount from balance chain")
		}
		out[i].ExtractionConfidence = corr.Confidence
		corrections = append(corrections, corr)
	}

	return out, corrections
}

// previousBalance finds the reference balance for transaction i: the
// nearest earlier visible balance, or the opening balance when i is the
// first transaction.
func previousBalance(txs []models.ExtractedTransaction, i int, opening *decimal.Decimal) *decimal.Decimal {
	for j := i - 1; j >= 0; j-- {
		if txs[j].Balance != nil {
			return txs[j].Balance
		}
	}
	return opening
}
