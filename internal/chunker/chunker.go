// Package chunker partitions large inputs into units small enough for a
// single model response.
package chunker

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/statement-extract/internal/models"
)

// MonthRanges splits [start, end] into calendar-month ranges. The first
// and last ranges are clipped to the detected boundaries so a statement
// running Jan 15 to Mar 10 yields Jan 15-31, Feb 1-29, Mar 1-10.
func MonthRanges(start, end time.Time) []models.MonthRange {
	if end.Before(start) {
		start, end = end, start
	}

	var ranges []models.MonthRange
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		monthEnd := cur.AddDate(0, 1, -1)

		s := cur
		if s.Before(start) {
			s = start
		}
		e := monthEnd
		if e.After(end) {
			e = end
		}
		ranges = append(ranges, models.MonthRange{
			Start: s,
			End:   e,
			Label: cur.Format("2006-01"),
		})
		cur = cur.AddDate(0, 1, 0)
	}
	return ranges
}

// Chunk is one batch of CSV rows with the header line repeated so each
// chunk stands alone.
type Chunk struct {
	Label string
	Text  string
	Rows  int
}

// CSVChunks splits CSV text into batches of at most rowsPerChunk data
// rows, each prefixed with the original header line.
func CSVChunks(text string, rowsPerChunk int) []Chunk {
	lines := splitDataLines(text)
	if len(lines) == 0 {
		return nil
	}
	header := lines[0]
	rows := lines[1:]
	if len(rows) == 0 {
		return []Chunk{{Label: "rows 0-0", Text: header, Rows: 0}}
	}

	var chunks []Chunk
	for i := 0; i < len(rows); i += rowsPerChunk {
		j := i + rowsPerChunk
		if j > len(rows) {
			j = len(rows)
		}
		body := strings.Join(rows[i:j], "\n")
		chunks = append(chunks, Chunk{
			Label: fmt.Sprintf("rows %d-%d", i+1, j),
			Text:  header + "\n" + body,
			Rows:  j - i,
		})
	}
	return chunks
}

func splitDataLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// LooksLikeCSV reports whether text is plausibly delimiter-separated
// tabular data: several lines sharing a consistent separator count.
func LooksLikeCSV(text string) bool {
	lines := splitDataLines(text)
	if len(lines) < 2 {
		return false
	}
	sample := lines
	if len(sample) > 20 {
		sample = sample[:20]
	}
	for _, sep := range []string{",", ";", "\t"} {
		if consistentSeparators(sample, sep) {
			return true
		}
	}
	return false
}

func consistentSeparators(lines []string, sep string) bool {
	first := strings.Count(lines[0], sep)
	if first < 1 {
		return false
	}
	matching := 0
	for _, line := range lines {
		if strings.Count(line, sep) == first {
			matching++
		}
	}
	return float64(matching)/float64(len(lines)) >= 0.8
}
