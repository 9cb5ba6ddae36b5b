package invoker

import (
	"fmt"
	"strings"
)

// The model must return exactly this shape; the strict field list keeps
// the repair and normalization layers simple.
const jsonContract = `Return ONLY a JSON object, no markdown fences, no commentary, in this exact shape:
{"transactions": [{"date": "...", "merchant": "...", "description": "...", "amount": 0, "type": "debit", "category": "", "balance": null, "extractionConfidence": 0.9}]}

Rules:
- "date": the booking date in YYYY-MM-DD form.
- "merchant": the counterparty name, or "" when not shown.
- "description": additional detail beyond the merchant name, or "".
- "amount": the transaction amount as a plain number, always positive.
- "type": "debit" for money leaving the account, "credit" for money arriving.
- "category": a short spending category when obvious, otherwise "".
- "balance": the running account balance printed immediately after this transaction, or null when the document does not show one. Never compute it yourself.
- "extractionConfidence": your confidence in this row between 0 and 1.
- Include every transaction, in document order. Do not invent transactions.`

// StatementPrompt asks for every transaction in the supplied document.
func StatementPrompt(categories []string) string {
	var sb strings.Builder
	sb.WriteString("Extract every financial transaction from this bank statement.\n\n")
	sb.WriteString(jsonContract)
	appendCategories(&sb, categories)
	return sb.String()
}

// MonthPrompt restricts extraction to a single month window.
func MonthPrompt(startISO, endISO string, categories []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract the financial transactions dated between %s and %s (inclusive) from this bank statement. Ignore transactions outside that window.\n\n", startISO, endISO)
	sb.WriteString(jsonContract)
	appendCategories(&sb, categories)
	return sb.String()
}

// CSVChunkPrompt wraps a batch of CSV rows.
func CSVChunkPrompt(chunk string, categories []string) string {
	var sb strings.Builder
	sb.WriteString("The following CSV rows come from a bank transaction export. Convert every data row into a transaction.\n\n")
	sb.WriteString(jsonContract)
	appendCategories(&sb, categories)
	sb.WriteString("\n\nCSV data:\n")
	sb.WriteString(chunk)
	return sb.String()
}

// TextPrompt wraps already-extracted statement text.
func TextPrompt(text string, categories []string) string {
	var sb strings.Builder
	sb.WriteString("Extract every financial transaction from the following bank statement text.\n\n")
	sb.WriteString(jsonContract)
	appendCategories(&sb, categories)
	sb.WriteString("\n\nStatement text:\n")
	sb.WriteString(text)
	return sb.String()
}

// PagePrompt asks for the transactions on a single page image.
func PagePrompt(page, total int, categories []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "This is page %d of %d of a scanned bank statement. Extract every financial transaction visible on this page.\n\n", page, total)
	sb.WriteString(jsonContract)
	appendCategories(&sb, categories)
	return sb.String()
}

func appendCategories(sb *strings.Builder, categories []string) {
	if len(categories) == 0 {
		return
	}
	sb.WriteString("\n\nWhen assigning \"category\", choose from: ")
	sb.WriteString(strings.Join(categories, ", "))
	sb.WriteString(".")
}
