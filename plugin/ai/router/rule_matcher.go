package router

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hrygo/daysuntil/plugin/ai/aitime"
)

// EventVocabulary lists the named events the bot knows.
type EventVocabulary interface {
	Names() []string
}

// RuleMatcher recognizes utterances offline. Known event names become event
// entities and date spans found by the date grammar become date range
// entities.
type RuleMatcher struct {
	events EventVocabulary
	clock  func() time.Time
}

// countdownPhrase matches questions about the time left until something.
var countdownPhrase = regexp.MustCompile(`\b(?:how\s+(?:many|much)\s+(?:more\s+)?(?:days|time)|how\s+long|days?\s+(?:until|till|til|to|before|left)|countdown|count\s+down|when\s+is)\b`)

// NewRuleMatcher creates a rule matcher over events. A nil vocabulary
// recognizes dates only.
func NewRuleMatcher(events EventVocabulary) *RuleMatcher {
	return &RuleMatcher{events: events, clock: time.Now}
}

// Recognize finds entities in utterance. The clock only anchors relative
// expressions during matching; the entity text is what callers resolve.
func (m *RuleMatcher) Recognize(_ context.Context, utterance, culture string) (*Recognition, error) {
	parser, err := aitime.NewParser(culture)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(utterance)
	var dates []Entity
	for r := range parser.Recognize(lower, m.clock()) {
		if r.TypeName != aitime.TypeNameDate && r.TypeName != aitime.TypeNameDateRange {
			continue
		}
		dates = append(dates, Entity{
			Type:       EntityTypeDateRange,
			Text:       r.Text,
			StartIndex: r.Start,
			EndIndex:   r.End - 1,
			Score:      0.8,
		})
	}

	// An event name inside a longer date span ("christmas eve") yields to the date.
	var entities []Entity
	for _, ev := range m.matchEvents(lower) {
		if !coveredByLonger(dates, ev) {
			entities = append(entities, ev)
		}
	}
	for _, d := range dates {
		if !overlapsAny(entities, d.StartIndex, d.EndIndex) {
			entities = append(entities, d)
		}
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].StartIndex < entities[j].StartIndex
	})

	rec := &Recognition{
		Query:     utterance,
		TopIntent: IntentNone,
		Entities:  entities,
		Provider:  ProviderRules,
	}
	switch {
	case countdownPhrase.MatchString(lower):
		rec.TopIntent, rec.Score = IntentDaysUntil, 0.9
	case len(entities) > 0:
		rec.TopIntent, rec.Score = IntentDaysUntil, 0.6
	}
	return rec, nil
}

func (m *RuleMatcher) matchEvents(lower string) []Entity {
	if m.events == nil {
		return nil
	}
	names := m.events.Names()
	// Longer names first so "new year's eve" wins over "new year".
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	var entities []Entity
	for _, name := range names {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(lower, -1) {
			if overlapsAny(entities, loc[0], loc[1]-1) {
				continue
			}
			entities = append(entities, Entity{
				Type:       EntityTypeEvent,
				Text:       lower[loc[0]:loc[1]],
				StartIndex: loc[0],
				EndIndex:   loc[1] - 1,
				Score:      1,
			})
		}
	}
	return entities
}

func coveredByLonger(spans []Entity, e Entity) bool {
	for _, s := range spans {
		if s.StartIndex <= e.StartIndex && e.EndIndex <= s.EndIndex && s.EndIndex-s.StartIndex > e.EndIndex-e.StartIndex {
			return true
		}
	}
	return false
}

func overlapsAny(entities []Entity, start, end int) bool {
	for _, e := range entities {
		if start <= e.EndIndex && e.StartIndex <= end {
			return true
		}
	}
	return false
}

var _ Recognizer = (*RuleMatcher)(nil)
