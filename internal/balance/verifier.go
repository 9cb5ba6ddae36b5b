// Package balance checks extracted transactions against the running
// balances printed on the statement. A statement's balance column is the
// only ground truth available after extraction, so it doubles as both a
// quality signal and a repair oracle.
package balance

import (
	"github.com/shopspring/decimal"

	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

// ChainLink records the arithmetic check between two consecutive visible
// balances. For a broken link, CorrectedAmount is the amount implied by
// the balance movement alone.
type ChainLink struct {
	Index           int             `json:"index"`
	Expected        decimal.Decimal `json:"expected"`
	Actual          decimal.Decimal `json:"actual"`
	Discrepancy     decimal.Decimal `json:"discrepancy"`
	Valid           bool            `json:"valid"`
	CorrectedAmount decimal.Decimal `json:"correctedAmount,omitempty"`
}

// VerificationResult summarizes a balance chain walk over one unit of
// transactions.
type VerificationResult struct {
	Links           []ChainLink
	ValidLinks      int
	BrokenLinks     int
	Coverage        float64
	FullyVerified   bool
	ClosingMatches  bool
	ClosingChecked  bool
	ClosingExpected decimal.Decimal
}

// Verifier walks a transaction list and validates each consecutive pair
// of visible balances.
type Verifier struct {
	tolerance         decimal.Decimal
	coverageThreshold float64
	log               logging.Logger
}

// NewVerifier creates a Verifier. The tolerance absorbs rounding drift
// between the statement's printed balances and the extracted amounts.
func NewVerifier(tolerance float64, coverageThreshold float64, log logging.Logger) *Verifier {
	return &Verifier{
		tolerance:         decimal.NewFromFloat(tolerance),
		coverageThreshold: coverageThreshold,
		log:               log,
	}
}

// Verify walks the balance chain. opening seeds the chain when provided;
// closing, when provided, is checked against the last visible balance as
// a diagnostic only. A transaction without a visible balance breaks the
// chain: verification resumes at the next visible balance instead of
// guessing across the gap.
func (v *Verifier) Verify(txs []models.ExtractedTransaction, opening, closing *decimal.Decimal, label string) VerificationResult {
	var res VerificationResult

	prev := opening
	visible := 0
	for i, tx := range txs {
		if tx.Balance == nil {
			prev = nil
			continue
		}
		visible++
		actual := *tx.Balance

		if prev != nil {
			expected := prev.Add(signedAmount(tx)).Round(2)
			disc := actual.Sub(expected)
			valid := disc.Abs().LessThan(v.tolerance)
			link := ChainLink{
				Index:       i,
				Expected:    expected,
				Actual:      actual,
				Discrepancy: disc,
				Valid:       valid,
			}
			if !valid {
				link.CorrectedAmount = actual.Sub(*prev).Abs().Round(2)
			}
			res.Links = append(res.Links, link)
			if valid {
				res.ValidLinks++
			} else {
				res.BrokenLinks++
				v.log.WithFields(
					logging.Field{Key: logging.FieldUnit, Value: label},
					logging.Field{Key: logging.FieldIndex, Value: i},
					logging.Field{Key: "expected", Value: expected.String()},
					logging.Field{Key: "actual", Value: actual.String()},
				).Debug("Balance chain link broken")
			}
		}
		// The printed balance is authoritative for the next link even
		// when this link failed.
		prev = &actual
	}

	if len(txs) > 0 {
		res.Coverage = float64(visible) / float64(len(txs))
	}
	res.FullyVerified = res.BrokenLinks == 0 && res.Coverage > v.coverageThreshold

	if closing != nil && prev != nil {
		res.ClosingChecked = true
		res.ClosingExpected = *prev
		res.ClosingMatches = closing.Sub(*prev).Abs().LessThan(v.tolerance)
		if !res.ClosingMatches {
			v.log.WithFields(
				logging.Field{Key: logging.FieldUnit, Value: label},
				logging.Field{Key: "stated", Value: closing.String()},
				logging.Field{Key: "computed", Value: prev.String()},
			).Warn("Closing balance does not match computed balance")
		}
	}

	return res
}

// signedAmount maps the stored positive amount back to its arithmetic
// sign.
func signedAmount(tx models.ExtractedTransaction) decimal.Decimal {
	if tx.IsDebit() {
		return tx.Amount.Neg()
	}
	return tx.Amount
}
