package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysUntil(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		now    time.Time
		target time.Time
		want   int
	}{
		{"same instant", base, base, 0},
		{"one millisecond ahead", base, base.Add(time.Millisecond), 1},
		{"just under a day", base, base.Add(23*time.Hour + 59*time.Minute + 59*time.Second), 1},
		{"exactly one day", base, base.Add(24 * time.Hour), 1},
		{"one day and a bit", base, base.Add(24*time.Hour + time.Millisecond), 2},
		{
			"midnight boundary",
			time.Date(2024, 12, 24, 23, 59, 59, 0, time.UTC),
			time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
			1,
		},
		{"half a day behind", base, base.Add(-12 * time.Hour), 0},
		{"a day and a half behind", base, base.Add(-36 * time.Hour), -1},
		{"two days behind", base, base.Add(-48 * time.Hour), -2},
		{
			"leap year february",
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			29,
		},
		{
			"far future",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2500, 3, 1, 0, 0, 0, 0, time.UTC),
			173855,
		},
		{
			"far past",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(1700, 3, 1, 0, 0, 0, 0, time.UTC),
			-118339,
		},
		{
			"last representable year",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC),
			2912809,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.now, tt.target))
		})
	}
}

func TestFormatAssumed(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Assuming you meant Fri Mar 15 2024, it's in 14 days.", formatAssumed(date, 14))
	assert.Equal(t, "It's in 0 days.", formatDays(0))
}

func TestKindForType(t *testing.T) {
	assert.Equal(t, KindNamedEvent, KindForType("event"))
	assert.Equal(t, KindDateRange, KindForType("builtin.datetimeV2.daterange"))
	assert.Equal(t, KindDateRange, KindForType("builtin.datetimeV2.date"))
	assert.Equal(t, KindOther, KindForType("builtin.number"))
	assert.Equal(t, KindOther, KindForType(""))
}

func TestParseKind(t *testing.T) {
	for _, k := range []EntityKind{KindOther, KindNamedEvent, KindDateRange} {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindNamedEvent, ParseKind(" Event "))
	assert.Equal(t, KindOther, ParseKind("person"))
}
