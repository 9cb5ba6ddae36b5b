package pdfutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateOutputTokens(t *testing.T) {
	tests := []struct {
		txCount int
		want    int32
	}{
		{0, 2048},
		{10, 2048},
		{50, 7168},
		{200, 29696},
		{1000, 32768},
	}
	for _, tt := range tests {
		got := estimateOutputTokens(tt.txCount)
		assert.Equal(t, tt.want, got, "txCount=%d", tt.txCount)
		assert.Zero(t, got%1024, "budget must be a multiple of 1024")
	}
}

func TestCountPagesHeuristic(t *testing.T) {
	data := []byte("%PDF-1.4\n/Type /Pages\n/Type /Page\n/Type /Page\n/Type /Page\n")
	assert.Equal(t, 3, countPagesHeuristic(data))

	assert.Equal(t, 1, countPagesHeuristic([]byte("garbage")), "floor of one page")
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7 ...")))
	assert.False(t, IsPDF([]byte("\x89PNG...")))
	assert.False(t, IsPDF(nil))
}

func TestDetectMIMEType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIMEType([]byte("%PDF-1.4")))
	assert.Equal(t, "image/png", DetectMIMEType([]byte("\x89PNG\r\n")))
	assert.Equal(t, "image/jpeg", DetectMIMEType([]byte{0xFF, 0xD8, 0xFF}))
}

func TestAnalyzeUnparseableFallsBackToScanned(t *testing.T) {
	a := Analyze([]byte("not a pdf at all"))
	assert.True(t, a.Scanned)
	assert.GreaterOrEqual(t, a.PageCount, 1)
	assert.Equal(t, int32(2048), a.MaxOutputTokens)
}
