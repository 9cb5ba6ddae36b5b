// Package pdfutils inspects PDF documents before extraction: page count,
// embedded text, and whether the file is a scan with no usable text layer.
package pdfutils

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text below this density (characters per page) means the PDF is almost
// certainly a scan.
const minCharsPerPage = 50

// amountPattern is a rough count of money-like tokens, used to size the
// output token budget.
var amountPattern = regexp.MustCompile(`\d+[',.]?\d*\.\d{2}`)

// Analysis is everything the pipeline needs to know about a PDF before
// choosing a strategy.
type Analysis struct {
	PageCount        int
	Text             string
	EstimatedTxCount int
	Scanned          bool
	MaxOutputTokens  int32
}

// Analyze extracts the text layer and derives the planning signals. A
// PDF the library cannot parse is treated as scanned rather than
// rejected; the document tier can still read it as an image.
func Analyze(data []byte) Analysis {
	var a Analysis

	text, pages, err := extractText(data)
	if err != nil || pages == 0 {
		a.PageCount = countPagesHeuristic(data)
		a.Scanned = true
		a.MaxOutputTokens = estimateOutputTokens(0)
		return a
	}

	a.PageCount = pages
	a.Text = text
	a.Scanned = len(strings.TrimSpace(text)) < minCharsPerPage*pages
	a.EstimatedTxCount = len(amountPattern.FindAllString(text, -1))
	a.MaxOutputTokens = estimateOutputTokens(a.EstimatedTxCount)
	return a
}

func extractText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	pages := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), pages, nil
}

// countPagesHeuristic counts page objects in the raw bytes. Used only
// when the parser fails; an answer of at least 1 keeps the page-by-page
// strategy viable.
func countPagesHeuristic(data []byte) int {
	count := bytes.Count(data, []byte("/Type /Page"))
	count -= bytes.Count(data, []byte("/Type /Pages"))
	if count < 1 {
		return 1
	}
	return count
}

// estimateOutputTokens sizes the response budget from the expected
// transaction count: a fixed envelope plus roughly one hundred tokens of
// JSON per transaction, with headroom, clamped and rounded for the API.
func estimateOutputTokens(txCount int) int32 {
	tokens := int(float64(150+txCount*100) * 1.5)
	if tokens < 2048 {
		tokens = 2048
	}
	if tokens > 32768 {
		tokens = 32768
	}
	tokens = (tokens / 1024) * 1024
	return int32(tokens)
}

// IsPDF checks the magic bytes.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// DetectMIMEType guesses a document MIME type from magic bytes.
func DetectMIMEType(data []byte) string {
	switch {
	case IsPDF(data):
		return "application/pdf"
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "image/png"
	default:
		return "image/jpeg"
	}
}
