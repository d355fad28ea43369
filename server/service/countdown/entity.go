package countdown

import "strings"

// EntityKind is the category of a recognized entity.
type EntityKind int

const (
	// KindOther is any entity the bot does not handle.
	KindOther EntityKind = iota
	// KindNamedEvent is a recurring occasion such as "xmas".
	KindNamedEvent
	// KindDateRange is a natural-language date or date range.
	KindDateRange
)

// String returns the kind name.
func (k EntityKind) String() string {
	switch k {
	case KindNamedEvent:
		return "named_event"
	case KindDateRange:
		return "date_range"
	default:
		return "other"
	}
}

// ParseKind converts a kind name produced by String back into a kind.
func ParseKind(s string) EntityKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "named_event", "event":
		return KindNamedEvent
	case "date_range", "daterange", "date":
		return KindDateRange
	default:
		return KindOther
	}
}

// NLU entity type names.
const (
	EntityTypeEvent     = "event"
	EntityTypeDateRange = "builtin.datetimeV2.daterange"
	EntityTypeDate      = "builtin.datetimeV2.date"
)

// KindForType maps an NLU entity type to a kind.
func KindForType(entityType string) EntityKind {
	switch entityType {
	case EntityTypeEvent:
		return KindNamedEvent
	case EntityTypeDateRange, EntityTypeDate:
		return KindDateRange
	default:
		return KindOther
	}
}

// Entity is the top entity of an utterance.
type Entity struct {
	Kind EntityKind
	Text string
}
