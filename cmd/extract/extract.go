// Package extract implements the extract command
package extract

import (
	"context"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fjacquet/statement-extract/cmd/root"
	"fjacquet/statement-extract/internal/common"
	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
	"fjacquet/statement-extract/internal/pipeline"
)

var (
	openingFlag string
	closingFlag string
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract transactions from a bank statement",
	Long: `Extract transactions from a single bank statement file and write them to CSV.

camt.053 XML files are parsed directly; everything else goes through the
Gemini API. When the statement prints running balances they are used to
verify and, where possible, correct the extracted amounts.

Example:
  statement-extract extract -i statement.pdf -o transactions.csv --opening 1000.00`,
	Run: extractFunc,
}

func init() {
	Cmd.Flags().StringVar(&openingFlag, "opening", "", "Opening balance of the statement period")
	Cmd.Flags().StringVar(&closingFlag, "closing", "", "Closing balance of the statement period")
}

func extractFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()

	input := root.SharedFlags.Input
	output := root.SharedFlags.Output
	if input == "" || output == "" {
		logger.Fatal("Input and output files must be specified")
	}

	data, err := os.ReadFile(input)
	if err != nil {
		logger.Fatalf("Failed to read input file: %v", err)
	}

	ctx := context.Background()
	p, cleanup, err := root.NewPipeline(ctx)
	if err != nil {
		logger.Fatalf("Failed to initialize pipeline: %v", err)
	}
	defer cleanup()

	res := p.Extract(ctx, pipeline.Input{
		Filename: input,
		Data:     data,
		DocType:  root.SharedFlags.DocType,
		Opening:  parseBalanceFlag(openingFlag, "opening", logger),
		Closing:  parseBalanceFlag(closingFlag, "closing", logger),
	})

	reportResult(res, logger)

	if len(res.Transactions) > 0 {
		if err := common.WriteTransactionsToCSV(res.Transactions, output, logger); err != nil {
			logger.Fatalf("Failed to write output: %v", err)
		}
	}

	if !res.Success {
		logger.Fatalf("Extraction failed: %s", res.Error)
	}
}

func reportResult(res models.ExtractionResult, logger logging.Logger) {
	logger.WithFields(
		logging.Field{Key: logging.FieldPipeline, Value: res.Metadata.Pipeline},
		logging.Field{Key: logging.FieldCount, Value: res.Metadata.Count},
	).Info("Extraction result")

	if v := res.Metadata.Verification; v != nil && v.ValidLinks+v.BrokenLinks > 0 {
		logger.WithFields(
			logging.Field{Key: "validLinks", Value: v.ValidLinks},
			logging.Field{Key: "brokenLinks", Value: v.BrokenLinks},
			logging.Field{Key: logging.FieldCoverage, Value: v.Coverage},
			logging.Field{Key: "corrections", Value: v.Corrections},
			logging.Field{Key: "reviewFlags", Value: v.ReviewFlags},
		).Info("Balance verification")
	}
	for _, w := range res.Metadata.Warnings {
		logger.Warn(w)
	}
	if res.Error != "" {
		logger.WithField(logging.FieldReason, res.Error).Warn("Extraction completed with errors")
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
