// Package verify implements the verify command
package verify

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fjacquet/statement-extract/cmd/root"
	"fjacquet/statement-extract/internal/balance"
	"fjacquet/statement-extract/internal/common"
	"fjacquet/statement-extract/internal/logging"
)

var (
	openingFlag string
	closingFlag string
)

// Cmd represents the verify command
var Cmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the balance chain of an extracted transactions CSV",
	Long: `Verify re-checks a previously extracted transactions CSV against its
balance chain without calling any model.

Example:
  statement-extract verify -i transactions.csv --opening 1000.00 --closing 1124.50`,
	Run: verifyFunc,
}

func init() {
	Cmd.Flags().StringVar(&openingFlag, "opening", "", "Opening balance of the statement period")
	Cmd.Flags().StringVar(&closingFlag, "closing", "", "Closing balance of the statement period")
}

func verifyFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()

	input := root.SharedFlags.Input
	if input == "" {
		logger.Fatal("Input file must be specified")
	}

	txs, err := common.ReadTransactionsCSV(input)
	if err != nil {
		logger.Fatalf("Failed to read transactions: %v", err)
	}

	verifier := balance.NewVerifier(root.Cfg.Balance.Tolerance, root.Cfg.Balance.CoverageThreshold, logger)
	res := verifier.Verify(txs, parseBalanceFlag(openingFlag, "opening", logger), parseBalanceFlag(closingFlag, "closing", logger), input)

	logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: input},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: "validLinks", Value: res.ValidLinks},
		logging.Field{Key: "brokenLinks", Value: res.BrokenLinks},
		logging.Field{Key: logging.FieldCoverage, Value: res.Coverage},
	).Info("Balance verification result")

	for _, link := range res.Links {
		if link.Valid {
			continue
		}
		logger.WithFields(
			logging.Field{Key: logging.FieldIndex, Value: link.Index},
			logging.Field{Key: "expected", Value: link.Expected.String()},
			logging.Field{Key: "actual", Value: link.Actual.String()},
			logging.Field{Key: "discrepancy", Value: link.Discrepancy.String()},
		).Warn("Broken balance chain link")
	}

	if res.ClosingChecked && !res.ClosingMatches {
		logger.WithField("computed", res.ClosingExpected.String()).Warn("Closing balance does not match")
	}

	if res.BrokenLinks > 0 {
		corrector := balance.NewCorrector(root.Cfg.Balance.MaxAutoCorrection, logger)
		_, corrections := corrector.Apply(txs, res, parseBalanceFlag(openingFlag, "opening", logger))
		for _, c := range corrections {
			logger.WithFields(
				logging.Field{Key: logging.FieldIndex, Value: c.Index},
				logging.Field{Key: "originalAmount", Value: c.OriginalAmount.String()},
				logging.Field{Key: "correctedAmount", Value: c.CorrectedAmount.String()},
				logging.Field{Key: "confidence", Value: c.Confidence},
				logging.Field{Key: "needsReview", Value: c.NeedsReview},
			).Info("Proposed correction")
		}
		logger.Fatalf("Balance chain has %d broken link(s)", res.BrokenLinks)
	}
	if res.FullyVerified {
		logger.Info("Balance chain fully verified")
	} else {
		logger.Warn("Balance chain verified where visible, but coverage is below threshold")
	}
}

func parseBalanceFlag(value, name string, logger logging.Logger) *decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		logger.Fatalf("Invalid %s balance %q: %v", name, value, err)
	}
	return &d
}
