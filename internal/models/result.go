package models

import "time"

// MonthRange describes one calendar month clipped to the overall statement
// period. It is the unit of work for month-by-month extraction.
type MonthRange struct {
	Start time.Time
	End   time.Time
	Label string // e.g. "2024-01"
}

// Contains reports whether a date (ISO form) falls inside the range.
func (m MonthRange) Contains(isoDate string) bool {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return false
	}
	return !t.Before(m.Start) && !t.After(m.End)
}

// UnitStatus records the outcome of one unit of work (a whole document, one
// month, one page, or one row-chunk).
type UnitStatus struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// VerificationSummary is the aggregate balance-verification outcome attached
// to result metadata.
type VerificationSummary struct {
	ValidLinks    int     `json:"validLinks"`
	BrokenLinks   int     `json:"brokenLinks"`
	Coverage      float64 `json:"coverage"`
	FullyVerified bool    `json:"fullyVerified"`
	Corrections   int     `json:"corrections"`
	ReviewFlags   int     `json:"reviewFlags"`
}

// ResultMetadata summarizes one extraction run.
type ResultMetadata struct {
	DocumentKind string               `json:"documentKind"`
	Pipeline     string               `json:"pipeline"`
	Count        int                  `json:"count"`
	ElapsedMS    int64                `json:"elapsedMs"`
	Units        []UnitStatus         `json:"units,omitempty"`
	FailedUnits  []string             `json:"failedUnits,omitempty"`
	Verification *VerificationSummary `json:"verification,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// ExtractionResult is the outcome of one extraction run. Success can be true
// with a non-empty Error when some but not all units of work succeeded.
type ExtractionResult struct {
	Success      bool                   `json:"success"`
	Transactions []ExtractedTransaction `json:"transactions"`
	Error        string                 `json:"error,omitempty"`
	Metadata     ResultMetadata         `json:"metadata"`
}
