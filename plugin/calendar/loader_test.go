package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsYAML = `
events:
  - names: [thanksgiving, turkey day]
    rrule: "FREQ=YEARLY;BYMONTH=11;BYDAY=+4TH"
  - names: [halloween]
    month: 10
    day: 31
`

func TestRRuleDate(t *testing.T) {
	fn, err := RRuleDate("FREQ=YEARLY;BYMONTH=11;BYDAY=+4TH")
	require.NoError(t, err)

	tests := []struct {
		year int
		want time.Time
	}{
		{2023, time.Date(2023, 11, 23, 0, 0, 0, 0, time.UTC)},
		{2024, time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC)},
		{2025, time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fn(tt.year, time.UTC))
	}
}

func TestRRuleDate_Invalid(t *testing.T) {
	_, err := RRuleDate("FREQ=SOMETIMES")
	assert.Error(t, err)
}

func TestRegistry_Load(t *testing.T) {
	r := NewRegistry()
	n, err := r.Load([]byte(eventsYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	got, ok := r.Resolve("Turkey Day", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC), got)

	got, ok = r.Resolve("halloween", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC), got)

	// Built-ins survive loading.
	assert.True(t, r.Has("xmas"))
}

func TestRegistry_Load_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "events: {unterminated"},
		{"no names", "events:\n  - month: 1\n    day: 1\n"},
		{"no date", "events:\n  - names: [nothing]\n"},
		{"bad rrule", "events:\n  - names: [odd]\n    rrule: \"FREQ=NEVER\"\n"},
		{"bad month", "events:\n  - names: [odd]\n    month: 13\n    day: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(WithoutBuiltins())
			_, err := r.Load([]byte(tt.data))
			assert.Error(t, err)
			assert.Empty(t, r.Names())
		})
	}
}

func TestRegistry_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(eventsYAML), 0o600))

	r := NewRegistry()
	n, err := r.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, r.Has("thanksgiving"))

	_, err = r.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRegistry_ReloadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
events:
  - names: [halloween]
    month: 10
    day: 31
  - names: [christmas]
    month: 12
    day: 24
`), 0o600))

	r := NewRegistry()
	_, err := r.LoadFile(path)
	require.NoError(t, err)

	now := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	got, ok := r.Resolve("christmas", now)
	require.True(t, ok)
	assert.Equal(t, 24, got.Day())

	require.NoError(t, os.WriteFile(path, []byte(`
events:
  - names: [new year]
    month: 1
    day: 1
`), 0o600))
	n, err := r.ReloadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.False(t, r.Has("halloween"))
	assert.True(t, r.Has("new year"))
	got, ok = r.Resolve("christmas", now)
	require.True(t, ok)
	assert.Equal(t, 25, got.Day(), "built-in comes back once the override is dropped")

	// A broken file leaves the registry untouched.
	require.NoError(t, os.WriteFile(path, []byte("events: {unterminated"), 0o600))
	_, err = r.ReloadFile(path)
	assert.Error(t, err)
	assert.True(t, r.Has("new year"))
}
