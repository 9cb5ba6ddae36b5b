package chunker

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMonthRangesClipped(t *testing.T) {
	ranges := MonthRanges(day("2024-01-15"), day("2024-03-10"))
	require.Len(t, ranges, 3)

	assert.Equal(t, "2024-01", ranges[0].Label)
	assert.Equal(t, day("2024-01-15"), ranges[0].Start)
	assert.Equal(t, day("2024-01-31"), ranges[0].End)

	assert.Equal(t, "2024-02", ranges[1].Label)
	assert.Equal(t, day("2024-02-01"), ranges[1].Start)
	assert.Equal(t, day("2024-02-29"), ranges[1].End, "2024 is a leap year")

	assert.Equal(t, "2024-03", ranges[2].Label)
	assert.Equal(t, day("2024-03-01"), ranges[2].Start)
	assert.Equal(t, day("2024-03-10"), ranges[2].End)
}

func TestMonthRangesSingleMonth(t *testing.T) {
	ranges := MonthRanges(day("2024-05-03"), day("2024-05-28"))
	require.Len(t, ranges, 1)
	assert.Equal(t, day("2024-05-03"), ranges[0].Start)
	assert.Equal(t, day("2024-05-28"), ranges[0].End)
}

func TestMonthRangesYearBoundary(t *testing.T) {
	ranges := MonthRanges(day("2023-12-20"), day("2024-01-05"))
	require.Len(t, ranges, 2)
	assert.Equal(t, "2023-12", ranges[0].Label)
	assert.Equal(t, "2024-01", ranges[1].Label)
}

func TestCSVChunksRepeatHeader(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Date,Description,Amount\n")
	for i := 1; i <= 130; i++ {
		sb.WriteString(fmt.Sprintf("2024-01-%02d,Item %d,%d.00\n", (i%28)+1, i, i))
	}

	chunks := CSVChunks(sb.String(), 60)
	require.Len(t, chunks, 3)

	assert.Equal(t, "rows 1-60", chunks[0].Label)
	assert.Equal(t, 60, chunks[0].Rows)
	assert.Equal(t, "rows 61-120", chunks[1].Label)
	assert.Equal(t, "rows 121-130", chunks[2].Label)
	assert.Equal(t, 10, chunks[2].Rows)

	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(c.Text, "Date,Description,Amount\n"))
	}
}

func TestCSVChunksEmpty(t *testing.T) {
	assert.Nil(t, CSVChunks("", 60))
	chunks := CSVChunks("Date,Amount\n", 60)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Rows)
}

func TestLooksLikeCSV(t *testing.T) {
	csv := "Date,Description,Amount\n2024-01-02,Coop,10.00\n2024-01-03,Migros,5.50\n"
	assert.True(t, LooksLikeCSV(csv))

	semicolons := "Date;Description;Amount\n2024-01-02;Coop;10.00\n"
	assert.True(t, LooksLikeCSV(semicolons))

	prose := "Dear customer,\nyour statement is attached.\nRegards, the bank\n"
	assert.False(t, LooksLikeCSV(prose))

	assert.False(t, LooksLikeCSV("one line only"))
}
