// Package router recognizes the intent and entities of a user utterance.
package router

import "context"

// Recognizer extracts the intent and entities of an utterance.
type Recognizer interface {
	// Recognize returns the recognition for utterance in culture.
	// Implementations that call a remote service honour ctx.
	Recognize(ctx context.Context, utterance, culture string) (*Recognition, error)
}

// Intent is the name of a recognized intent.
type Intent string

const (
	// IntentNone means no intent applies.
	IntentNone Intent = "None"
	// IntentDaysUntil asks how many days remain until a date.
	IntentDaysUntil Intent = "DaysUntil"
)

// Entity types produced by the recognizers.
const (
	EntityTypeEvent     = "event"
	EntityTypeDate      = "builtin.datetimeV2.date"
	EntityTypeDateRange = "builtin.datetimeV2.daterange"
)

// Recognition is the result of recognizing one utterance.
type Recognition struct {
	Query     string   `json:"query"`
	TopIntent Intent   `json:"top_intent"`
	Score     float64  `json:"score"`
	Entities  []Entity `json:"entities"`
	Provider  string   `json:"provider,omitempty"`
}

// Entity is a typed span of the utterance. EndIndex is inclusive.
type Entity struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Score      float64 `json:"score,omitempty"`
}

// TopEntity returns the first entity in the order the recognizer ranked
// them, or nil when there is none.
func (r *Recognition) TopEntity() *Entity {
	if r == nil || len(r.Entities) == 0 {
		return nil
	}
	return &r.Entities[0]
}

// HasIntent reports whether the top intent is something other than None.
func (r *Recognition) HasIntent() bool {
	return r != nil && r.TopIntent != "" && r.TopIntent != IntentNone
}
