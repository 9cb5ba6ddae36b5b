package jsonrepair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-extract/internal/models"
)

func decode(t *testing.T, s string) models.ModelResponse {
	t.Helper()
	var resp models.ModelResponse
	require.NoError(t, json.Unmarshal([]byte(s), &resp), "repaired output must be valid JSON: %s", s)
	return resp
}

func TestValidInputUnchanged(t *testing.T) {
	in := `{"transactions": [{"date": "2024-01-02", "amount": 10.5}]}`
	assert.Equal(t, in, Repair(in))
}

func TestRepairIdempotent(t *testing.T) {
	inputs := []string{
		`{"transactions": [{"date": "2024-01-02", "amount": 10.5}]}`,
		"```json\n{\"transactions\": [{\"date\": \"2024-01-02\"}]}\n```",
		`{"transactions": [{"date": "2024-01-02"`,
	}
	for _, in := range inputs {
		once := Repair(in)
		assert.Equal(t, once, Repair(once))
	}
}

func TestStripsMarkdownFences(t *testing.T) {
	in := "```json\n{\"transactions\": [{\"date\": \"2024-01-02\", \"amount\": 5}]}\n```"
	resp := decode(t, Repair(in))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "2024-01-02", resp.Transactions[0].Date)
}

func TestSkipsLeadingProse(t *testing.T) {
	in := `Here are the transactions you asked for:
{"transactions": [{"date": "2024-01-02", "amount": 5}]}`
	resp := decode(t, Repair(in))
	assert.Len(t, resp.Transactions, 1)
}

func TestPrefersTransactionsObjectOverEarlierBrace(t *testing.T) {
	in := `The format {like this} is used below.
{"transactions": [{"date": "2024-01-02", "amount": 5}]}`
	resp := decode(t, Repair(in))
	assert.Len(t, resp.Transactions, 1)
}

func TestClosesMissingDelimiters(t *testing.T) {
	in := `{"transactions": [{"date": "2024-01-02", "amount": 5}`
	resp := decode(t, Repair(in))
	assert.Len(t, resp.Transactions, 1)
}

func TestTruncatedMidObjectDropsPartialElement(t *testing.T) {
	in := `{"transactions": [
		{"date": "2024-01-02", "merchant": "Coop", "amount": 5},
		{"date": "2024-01-03", "merchant": "Migros", "amount": 7},
		{"date": "2024-01-04", "merch`
	resp := decode(t, Repair(in))
	require.Len(t, resp.Transactions, 2, "partial trailing element is discarded")
	assert.Equal(t, "2024-01-03", resp.Transactions[1].Date)
}

func TestTruncatedMidStringDropsPartialElement(t *testing.T) {
	in := `{"transactions": [
		{"date": "2024-01-02", "amount": 5},
		{"date": "2024-01-03", "merchant": "Mig`
	resp := decode(t, Repair(in))
	require.Len(t, resp.Transactions, 1)
}

func TestTruncatedAfterCommaDropsComma(t *testing.T) {
	in := `{"transactions": [{"date": "2024-01-02", "amount": 5},`
	resp := decode(t, Repair(in))
	assert.Len(t, resp.Transactions, 1)
}

func TestBracesInsideStringsIgnored(t *testing.T) {
	in := `{"transactions": [{"date": "2024-01-02", "description": "ref {A1} [x]", "amount": 5}]}`
	resp := decode(t, Repair(in))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "ref {A1} [x]", resp.Transactions[0].Description)
}

func TestEscapedQuoteInsideString(t *testing.T) {
	in := `{"transactions": [{"date": "2024-01-02", "description": "says \"hi\" {", "amount": 5}`
	resp := decode(t, Repair(in))
	assert.Len(t, resp.Transactions, 1)
}

func TestNoObjectAtAll(t *testing.T) {
	assert.Equal(t, "", Repair("no json here"))
	assert.Equal(t, "", Repair(""))
}
