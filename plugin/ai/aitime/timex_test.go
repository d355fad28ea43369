package aitime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimex_Dates(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantExplicit Components
		wantYear     int
		wantMonth    int
		wantDay      int
		wantDefinite bool
		wantHasDate  bool
	}{
		{"definite date", "2024-12-25", HasYear | HasMonth | HasDay, 2024, 12, 25, true, true},
		{"yearless date", "XXXX-12-25", HasMonth | HasDay, 0, 12, 25, false, true},
		{"day of month only", "XXXX-XX-15", HasDay, 0, 0, 15, false, true},
		{"year and day", "2024-XX-15", HasYear | HasDay, 2024, 0, 15, false, true},
		{"month", "2024-12", HasYear | HasMonth, 2024, 12, 0, false, false},
		{"yearless month", "XXXX-12", HasMonth, 0, 12, 0, false, false},
		{"year", "2025", HasYear, 2025, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimex(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.input, got.Raw)
			assert.Equal(t, tt.wantExplicit, got.Explicit, "explicit %s", got.Explicit)
			assert.Equal(t, tt.wantYear, got.Year)
			assert.Equal(t, tt.wantMonth, got.Month)
			assert.Equal(t, tt.wantDay, got.Day)
			assert.Equal(t, tt.wantDefinite, got.IsDefinite())
			assert.Equal(t, tt.wantHasDate, got.HasDate())
		})
	}
}

func TestParseTimex_WeekdayAndClock(t *testing.T) {
	tx, err := ParseTimex("XXXX-WXX-5")
	require.NoError(t, err)
	assert.Equal(t, 5, tx.Weekday)
	assert.True(t, tx.Has(HasWeekday))
	assert.False(t, tx.Has(HasDay))
	assert.True(t, tx.HasDate())

	tx, err = ParseTimex("T17:30")
	require.NoError(t, err)
	assert.Equal(t, 17, tx.Hour)
	assert.Equal(t, 30, tx.Minute)
	assert.False(t, tx.HasDate())
}

func TestParseTimex_DurationAndRange(t *testing.T) {
	tx, err := ParseTimex("P1Y2M3W4DT5H6M7S")
	require.NoError(t, err)
	assert.Equal(t, Duration{Years: 1, Months: 2, Weeks: 3, Days: 4, Hours: 5, Minutes: 6, Seconds: 7}, tx.Duration)

	tx, err = ParseTimex("(XXXX-12-01,XXXX-12-05,P4D)")
	require.NoError(t, err)
	assert.True(t, tx.Has(HasRange|HasDuration|HasMonth|HasDay))
	assert.Equal(t, 12, tx.Month)
	assert.Equal(t, 1, tx.Day)
	assert.Equal(t, 4, tx.Duration.Days)
}

func TestParseTimex_Errors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"garbage",
		"2024-13-01",
		"2024-12-32",
		"XXXX-WXX-9",
		"(2024-12-01,P4D)",
		"P",
		"T99",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTimex(input)
			assert.Error(t, err)
		})
	}

	_, err := ParseTimex(" ")
	assert.ErrorIs(t, err, ErrEmptyTimex)
}

func TestComponents_String(t *testing.T) {
	assert.Equal(t, "none", Components(0).String())
	assert.Equal(t, "YMD", (HasYear | HasMonth | HasDay).String())
}
