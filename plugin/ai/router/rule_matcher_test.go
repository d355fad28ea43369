package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVocabulary []string

func (v staticVocabulary) Names() []string { return append([]string(nil), v...) }

func newTestRuleMatcher() *RuleMatcher {
	m := NewRuleMatcher(staticVocabulary{"xmas", "christmas", "thanksgiving"})
	m.clock = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return m
}

func TestRuleMatcher_Recognize(t *testing.T) {
	m := newTestRuleMatcher()

	tests := []struct {
		name       string
		input      string
		wantIntent Intent
		wantType   string
		wantText   string
	}{
		{"event question", "How many days until Xmas?", IntentDaysUntil, EntityTypeEvent, "xmas"},
		{"event from file", "days till thanksgiving", IntentDaysUntil, EntityTypeEvent, "thanksgiving"},
		{"date question", "how long until the 15th", IntentDaysUntil, EntityTypeDateRange, "the 15th"},
		{"bare date", "december 25", IntentDaysUntil, EntityTypeDateRange, "december 25"},
		{"date range", "how many days between dec 1 and dec 5", IntentDaysUntil, EntityTypeDateRange, "between dec 1 and dec 5"},
		{"longer date wins", "days until christmas eve", IntentDaysUntil, EntityTypeDateRange, "christmas eve"},
		{"phrase without entity", "how many days until my birthday", IntentDaysUntil, "", ""},
		{"small talk", "hello there", IntentNone, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := m.Recognize(context.Background(), tt.input, "en-us")
			require.NoError(t, err)
			assert.Equal(t, tt.wantIntent, rec.TopIntent)
			assert.Equal(t, ProviderRules, rec.Provider)

			top := rec.TopEntity()
			if tt.wantType == "" {
				assert.Nil(t, top)
				return
			}
			require.NotNil(t, top)
			assert.Equal(t, tt.wantType, top.Type)
			assert.Equal(t, tt.wantText, top.Text)
		})
	}
}

func TestRuleMatcher_EntitiesInTextOrder(t *testing.T) {
	rec, err := newTestRuleMatcher().Recognize(context.Background(), "is the 15th before xmas", "en-us")
	require.NoError(t, err)
	require.Len(t, rec.Entities, 2)
	assert.Equal(t, "the 15th", rec.Entities[0].Text)
	assert.Equal(t, "xmas", rec.Entities[1].Text)
	assert.Equal(t, 3, rec.Entities[0].StartIndex)
	assert.Equal(t, 10, rec.Entities[0].EndIndex)
}

func TestRuleMatcher_UnsupportedCulture(t *testing.T) {
	_, err := newTestRuleMatcher().Recognize(context.Background(), "xmas", "fr-fr")
	assert.Error(t, err)
}
