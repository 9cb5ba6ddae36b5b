package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/statement-extract/internal/invoker"
	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

// aggregate folds unit outcomes into one growing result. Strategies
// append units in order; finalize turns the fold into an
// ExtractionResult.
type aggregate struct {
	documentKind string
	pipeline     string

	transactions []models.ExtractedTransaction
	units        []models.UnitStatus
	failed       []string
	warnings     []string

	opening *decimal.Decimal
	closing *decimal.Decimal
}

func newAggregate(documentKind, pipeline string) *aggregate {
	return &aggregate{documentKind: documentKind, pipeline: pipeline}
}

func (a *aggregate) addUnit(out invoker.UnitOutcome) {
	a.transactions = append(a.transactions, out.Transactions...)
	a.units = append(a.units, out.Status)
	if !out.Status.OK {
		a.failed = append(a.failed, out.Status.Label)
	}
	if out.Truncated {
		a.warnings = append(a.warnings, fmt.Sprintf("unit %q: model output truncated, trailing transactions may be missing", out.Status.Label))
	}
}

// addMonthUnit clips the unit's transactions to its month window before
// folding. Models occasionally return neighboring transactions despite
// the prompt window; clipping here also prevents duplicates across
// adjacent months.
func (a *aggregate) addMonthUnit(out invoker.UnitOutcome, r models.MonthRange) {
	kept := out.Transactions[:0:0]
	for _, tx := range out.Transactions {
		if r.Contains(tx.Date) {
			kept = append(kept, tx)
		}
	}
	out.Transactions = kept
	out.Status.Count = len(kept)
	a.addUnit(out)
}

func (a *aggregate) warn(msg string) {
	a.warnings = append(a.warnings, msg)
}

// finalize sorts, deduplicates, verifies and corrects the aggregate,
// then assembles the result. Success with a non-empty Error signals a
// partial extraction: some units failed but others produced data.
func (p *Pipeline) finalize(in Input, agg *aggregate) models.ExtractionResult {
	txs := agg.transactions
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date < txs[j].Date })

	if p.cfg.Dedup {
		txs = dedupe(txs, p.log)
	}

	opening := agg.opening
	if opening == nil {
		opening = in.Opening
	}
	closing := agg.closing
	if closing == nil {
		closing = in.Closing
	}

	verification := p.verifier.Verify(txs, opening, closing, agg.pipeline)
	summary := models.VerificationSummary{
		ValidLinks:    verification.ValidLinks,
		BrokenLinks:   verification.BrokenLinks,
		Coverage:      verification.Coverage,
		FullyVerified: verification.FullyVerified,
	}

	if verification.BrokenLinks > 0 {
		corrected, corrections := p.corrector.Apply(txs, verification, opening)
		txs = corrected
		for _, c := range corrections {
			if c.Applied {
				summary.Corrections++
			}
			if c.NeedsReview {
				summary.ReviewFlags++
			}
		}
		// Rerun so the summary reflects the corrected chain.
		reverified := p.verifier.Verify(txs, opening, closing, agg.pipeline)
		summary.ValidLinks = reverified.ValidLinks
		summary.BrokenLinks = reverified.BrokenLinks
		summary.FullyVerified = reverified.FullyVerified
	}

	res := models.ExtractionResult{
		Transactions: txs,
		Metadata: models.ResultMetadata{
			DocumentKind: agg.documentKind,
			Pipeline:     agg.pipeline,
			Count:        len(txs),
			Units:        agg.units,
			FailedUnits:  agg.failed,
			Verification: &summary,
			Warnings:     agg.warnings,
		},
	}

	switch {
	case len(agg.failed) == 0:
		res.Success = true
	case len(agg.failed) < len(agg.units):
		res.Success = true
		res.Error = fmt.Sprintf("extraction incomplete: %d of %d units failed (%s)",
			len(agg.failed), len(agg.units), strings.Join(agg.failed, ", "))
	default:
		res.Success = false
		res.Error = fmt.Sprintf("extraction failed: all %d units failed", len(agg.units))
	}
	return res
}

// dedupe drops transactions that repeat an earlier date, amount, type
// and merchant combination. Duplicates appear when unit boundaries
// overlap in the source document.
func dedupe(txs []models.ExtractedTransaction, log logging.Logger) []models.ExtractedTransaction {
	seen := make(map[string]bool, len(txs))
	out := txs[:0:0]
	dropped := 0
	for _, tx := range txs {
		key := tx.Date + "|" + tx.Amount.String() + "|" + string(tx.Type) + "|" + strings.ToLower(tx.Merchant)
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		out = append(out, tx)
	}
	if dropped > 0 {
		log.WithField(logging.FieldCount, dropped).Debug("Dropped duplicate transactions")
	}
	return out
}
