// Package common holds shared file IO helpers.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

var delimiter = ','

// SetDelimiter sets the rune used for CSV output and input.
func SetDelimiter(d rune) {
	delimiter = d
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		writer := csv.NewWriter(out)
		writer.Comma = delimiter
		return gocsv.NewSafeCSVWriter(writer)
	})
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		reader := csv.NewReader(in)
		reader.Comma = delimiter
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1
		return reader
	})
}

// WriteTransactionsToCSV writes transactions to a CSV file.
func WriteTransactionsToCSV(txs []models.ExtractedTransaction, path string, log logging.Logger) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&txs, file); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	log.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
	).Info("Wrote transactions to CSV")
	return nil
}

// ReadTransactionsCSV reads a previously written transactions CSV.
func ReadTransactionsCSV(path string) ([]models.ExtractedTransaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	var txs []models.ExtractedTransaction
	if err := gocsv.UnmarshalFile(file, &txs); err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	return txs, nil
}
