package match

import "time"

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event is the match-lifecycle notification published by the match store.
// It carries enough to locate the affected table, nothing more.
type Event struct {
	Kind       EventKind
	MatchID    string
	LeagueID   string
	Season     string
	OccurredAt time.Time
}
