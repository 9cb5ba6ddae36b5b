package dateutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2024-03-15", "2024-03-15", false},
		{"15.03.2024", "2024-03-15", false},
		{"15/03/2024", "2024-03-15", false},
		{"2024/03/15", "2024-03-15", false},
		{"15 March 2024", "2024-03-15", false},
		{"Mar 15, 2024", "2024-03-15", false},
		{"20240315", "2024-03-15", false},
		{"  2024-03-15  ", "2024-03-15", false},
		{"", "", true},
		{"not a date", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatISO(got))
		})
	}
}

func TestIsISODate(t *testing.T) {
	assert.True(t, IsISODate("2024-01-31"))
	assert.False(t, IsISODate("2024-02-31"), "impossible calendar date")
	assert.False(t, IsISODate("31.01.2024"))
	assert.False(t, IsISODate("2024-1-31"))
	assert.False(t, IsISODate(""))
}

func TestDetectDateRange(t *testing.T) {
	text := `Statement period
	Opening 01.01.2024 balance 1200.00
	Payment on 2024-02-10
	Closing 15.03.2024`

	start, end, ok := DetectDateRange(text)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", FormatISO(start))
	assert.Equal(t, "2024-03-15", FormatISO(end))

	_, _, ok = DetectDateRange("no dates in here")
	assert.False(t, ok)
}

func TestDetectDateRangeDashSeparatedDates(t *testing.T) {
	text := `Opening 05-01-2024 balance 1200.00
	Closing 20-02-2024`

	start, end, ok := DetectDateRange(text)
	require.True(t, ok)
	assert.Equal(t, "2024-01-05", FormatISO(start))
	assert.Equal(t, "2024-02-20", FormatISO(end))
}
