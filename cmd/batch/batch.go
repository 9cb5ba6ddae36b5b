// Package batch handles batch processing of statement files
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/statement-extract/cmd/root"
	"fjacquet/statement-extract/internal/common"
	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/pipeline"
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract transactions from every statement in a directory",
	Long: `Batch process statement files from an input directory and write one
transactions CSV per statement to the output directory.

For batch, -i and -o refer to directories. Supported file types are PDF,
CSV, camt.053 XML and plain text.

Example:
  statement-extract batch -i statements/ -o extracted/`,
	Run: batchFunc,
}

var supportedExtensions = map[string]bool{
	".pdf": true,
	".csv": true,
	".xml": true,
	".txt": true,
}

func batchFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()

	inputDir := root.SharedFlags.Input
	outputDir := root.SharedFlags.Output
	if inputDir == "" || outputDir == "" {
		logger.Fatal("Input and output directories must be specified")
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}

	files, err := os.ReadDir(inputDir)
	if err != nil {
		logger.Fatalf("Failed to read input directory: %v", err)
	}

	ctx := context.Background()
	p, cleanup, err := root.NewPipeline(ctx)
	if err != nil {
		logger.Fatalf("Failed to initialize pipeline: %v", err)
	}
	defer cleanup()

	processed := 0
	failed := 0
	for _, file := range files {
		if file.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(file.Name()))] {
			continue
		}

		inPath := filepath.Join(inputDir, file.Name())
		outName := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())) + ".csv"
		outPath := filepath.Join(outputDir, outName)

		if err := processFile(ctx, p, inPath, outPath, logger); err != nil {
			logger.WithError(err).WithField(logging.FieldFile, inPath).Error("Failed to process file")
			failed++
			continue
		}
		processed++
	}

	logger.WithFields(
		logging.Field{Key: logging.FieldCount, Value: processed},
		logging.Field{Key: "failed", Value: failed},
	).Info("Batch processing completed")

	if failed > 0 && processed == 0 {
		logger.Fatal("All files failed to process")
	}
}

func processFile(ctx context.Context, p *pipeline.Pipeline, inPath, outPath string, logger logging.Logger) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	res := p.Extract(ctx, pipeline.Input{
		Filename: inPath,
		Data:     data,
		DocType:  root.SharedFlags.DocType,
	})
	if !res.Success {
		return fmt.Errorf("extraction failed: %s", res.Error)
	}
	if res.Error != "" {
		logger.WithField(logging.FieldFile, inPath).Warn(res.Error)
	}

	return common.WriteTransactionsToCSV(res.Transactions, outPath, logger)
}
