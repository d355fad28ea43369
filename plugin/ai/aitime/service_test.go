package aitime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ResolveText(t *testing.T) {
	svc, err := NewEnglishService(CultureEnglish)
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       string
		wantOK      bool
		wantDate    string
		wantAssumeY bool
		wantAssumeM bool
	}{
		{"yearless date", "december 25", true, "2024-12-25", true, false},
		{"definite date", "2024-12-25", true, "2024-12-25", false, false},
		{"day of month", "the 15th", true, "2024-03-15", true, true},
		{"relative day", "tomorrow", true, "2024-03-02", false, false},
		{"range", "between dec 1 and dec 5", true, "2024-12-01", true, false},
		{"weekday only", "friday", false, "", false, false},
		{"month only", "december", false, "", false, false},
		{"week", "next week", false, "", false, false},
		{"time only", "5pm", false, "", false, false},
		{"nothing", "what is up", false, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := svc.ResolveText(tt.input, testRef)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantDate, got.Date.Format("2006-01-02"))
			assert.Equal(t, tt.wantAssumeY, got.AssumedYear)
			assert.Equal(t, tt.wantAssumeM, got.AssumedMonth)
		})
	}
}

func TestService_ResolveText_CandidateOrder(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	forward := NewService(NewMockRecognizer(DateResult("x", "XXXX-XX-15", "2024-07-04")))
	got, ok := forward.ResolveText("x", now)
	require.True(t, ok)
	assert.Equal(t, "2024-03-15", got.Date.Format("2006-01-02"))

	reversed := NewService(NewMockRecognizer(DateResult("x", "2024-07-04", "XXXX-XX-15")))
	got, ok = reversed.ResolveText("x", now)
	require.True(t, ok)
	assert.Equal(t, "2024-07-04", got.Date.Format("2006-01-02"))
}

func TestService_ResolveText_LaterSpanOverrides(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	svc := NewService(NewMockRecognizer(
		DateResult("a", "2024-07-04"),
		DateResult("b", "XXXX-WXX-5"),
		DateResult("c", "2024-08-01"),
		DateResult("d", "T17"),
	))
	got, ok := svc.ResolveText("ignored", now)
	require.True(t, ok)
	assert.Equal(t, "2024-08-01", got.Date.Format("2006-01-02"))
}

func TestNewEnglishService_UnsupportedCulture(t *testing.T) {
	_, err := NewEnglishService("de-de")
	assert.ErrorIs(t, err, ErrUnsupportedCulture)
}
