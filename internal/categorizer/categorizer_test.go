package categorizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

func TestApplyDefaults(t *testing.T) {
	c := New("", logging.NewMockLogger())

	txs := []models.ExtractedTransaction{
		{Merchant: "MIGROS M Zuerich", Type: models.TypeDebit},
		{Merchant: "Unknown", Description: "Netflix subscription", Type: models.TypeDebit},
		{Merchant: "Mysterious Vendor", Type: models.TypeDebit},
		{Merchant: "Coop", Category: "Custom", Type: models.TypeDebit},
	}
	c.Apply(txs)

	assert.Equal(t, "Groceries", txs[0].Category)
	assert.InDelta(t, 0.6, txs[0].CategoryConfidence, 1e-9)
	assert.Equal(t, "Entertainment", txs[1].Category, "description is matched too")
	assert.Empty(t, txs[2].Category, "no match leaves category empty")
	assert.Equal(t, "Custom", txs[3].Category, "existing categories are preserved")
}

func TestLoadTaxonomyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	content := `categories:
  - name: Coffee
    keywords: [espresso, latte]
  - name: Books
    keywords: [bookshop]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c := New(path, logging.NewMockLogger())
	assert.Equal(t, []string{"Coffee", "Books"}, c.Names())

	txs := []models.ExtractedTransaction{{Merchant: "Latte Art Bar"}}
	c.Apply(txs)
	assert.Equal(t, "Coffee", txs[0].Category)
}

func TestMissingTaxonomyFallsBackToDefaults(t *testing.T) {
	log := logging.NewMockLogger()
	c := New("/nonexistent/categories.yaml", log)
	assert.Contains(t, c.Names(), "Groceries")
}
