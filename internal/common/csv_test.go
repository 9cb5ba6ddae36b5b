package common

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

func TestWriteAndReadTransactions(t *testing.T) {
	SetDelimiter(',')
	path := filepath.Join(t.TempDir(), "out.csv")

	balance := decimal.NewFromFloat(950.00)
	txs := []models.ExtractedTransaction{
		{
			Date:                 "2024-01-02",
			Merchant:             "Coop",
			Amount:               decimal.NewFromFloat(50.00),
			Type:                 models.TypeDebit,
			Category:             "Groceries",
			ExtractionConfidence: 0.8,
			Balance:              &balance,
		},
		{
			Date:                 "2024-01-05",
			Merchant:             "ACME AG",
			Amount:               decimal.NewFromFloat(200.00),
			Type:                 models.TypeCredit,
			ExtractionConfidence: 1.0,
		},
	}

	require.NoError(t, WriteTransactionsToCSV(txs, path, logging.NewMockLogger()))

	got, err := ReadTransactionsCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Coop", got[0].Merchant)
	assert.True(t, got[0].Amount.Equal(txs[0].Amount))
	require.NotNil(t, got[0].Balance)
	assert.True(t, got[0].Balance.Equal(balance))
	assert.Nil(t, got[1].Balance)
	assert.Equal(t, models.TypeCredit, got[1].Type)
}
