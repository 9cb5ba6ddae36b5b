// Package categorizer assigns spending categories by keyword matching
// against a configurable taxonomy. It runs after extraction and only
// fills in categories the model left blank.
package categorizer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

// Confidence assigned to a keyword match. Deliberately below the model's
// default so model-assigned categories win on review sorting.
const keywordMatchConfidence = 0.6

// CategoryConfig defines one category and the keywords that select it.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type taxonomyFile struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// defaultCategories covers common statement vocabulary when no taxonomy
// file is configured.
var defaultCategories = []CategoryConfig{
	{Name: "Groceries", Keywords: []string{"migros", "coop", "denner", "aldi", "lidl", "supermarket", "grocery"}},
	{Name: "Dining", Keywords: []string{"restaurant", "cafe", "pizzeria", "mcdonald", "starbucks", "takeaway"}},
	{Name: "Transport", Keywords: []string{"sbb", "cff", "uber", "taxi", "parking", "fuel", "petrol", "shell", "bp"}},
	{Name: "Housing", Keywords: []string{"rent", "miete", "loyer", "mortgage", "hypothek"}},
	{Name: "Utilities", Keywords: []string{"swisscom", "sunrise", "salt", "electricity", "energie", "internet"}},
	{Name: "Insurance", Keywords: []string{"insurance", "versicherung", "assurance", "css", "helsana", "axa"}},
	{Name: "Health", Keywords: []string{"pharmacy", "apotheke", "pharmacie", "doctor", "hospital", "dentist"}},
	{Name: "Shopping", Keywords: []string{"amazon", "zalando", "galaxus", "digitec", "ikea", "manor"}},
	{Name: "Entertainment", Keywords: []string{"netflix", "spotify", "cinema", "kino", "steam", "disney"}},
	{Name: "Income", Keywords: []string{"salary", "lohn", "salaire", "dividend", "refund"}},
	{Name: "Fees", Keywords: []string{"fee", "charge", "commission", "interest", "zins"}},
}

// Categorizer matches merchants and descriptions against a taxonomy.
type Categorizer struct {
	categories []CategoryConfig
	log        logging.Logger
}

// New loads the taxonomy from filePath, or falls back to the built-in
// defaults when filePath is empty or unreadable.
func New(filePath string, log logging.Logger) *Categorizer {
	c := &Categorizer{categories: defaultCategories, log: log}
	if filePath == "" {
		return c
	}
	loaded, err := loadTaxonomy(filePath)
	if err != nil {
		log.WithError(err).WithField(logging.FieldFile, filePath).Warn("Failed to load category taxonomy, using defaults")
		return c
	}
	c.categories = loaded
	log.WithFields(
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(loaded)},
	).Debug("Loaded category taxonomy")
	return c
}

func loadTaxonomy(filePath string) ([]CategoryConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}
	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy file defines no categories")
	}
	return file.Categories, nil
}

// Names returns the category names, for inclusion in model prompts.
func (c *Categorizer) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Apply fills in the Category field of transactions that have none. The
// slice is modified in place; transactions the model already categorized
// are left alone.
func (c *Categorizer) Apply(txs []models.ExtractedTransaction) {
	matched := 0
	for i := range txs {
		if txs[i].Category != "" {
			continue
		}
		name, ok := c.match(txs[i].Merchant + " " + txs[i].Description)
		if !ok {
			continue
		}
		txs[i].Category = name
		txs[i].CategoryConfidence = keywordMatchConfidence
		matched++
	}
	if matched > 0 {
		c.log.WithField(logging.FieldCount, matched).Debug("Categorized transactions by keyword")
	}
}

func (c *Categorizer) match(text string) (string, bool) {
	text = strings.ToLower(text)
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				return cat.Name, true
			}
		}
	}
	return "", false
}
