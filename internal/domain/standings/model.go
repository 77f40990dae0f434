package standings

import (
	"fmt"
	"time"
)

type SubjectKind string

const (
	SubjectClub SubjectKind = "club"
	SubjectTeam SubjectKind = "team"
)

// SubjectRef identifies the resolved entity a table entry represents. It is
// resolved exactly once, at the resolution boundary; downstream code never
// re-inspects which raw match representation produced it.
type SubjectRef struct {
	Kind SubjectKind
	ID   string
	Name string
}

// Key is the stable identity used for dedup, caching and entry matching.
func (s SubjectRef) Key() string {
	return string(s.Kind) + ":" + s.ID
}

func (s SubjectRef) Validate() error {
	if s.Kind != SubjectClub && s.Kind != SubjectTeam {
		return fmt.Errorf("subject kind %q is invalid", s.Kind)
	}
	if s.ID == "" {
		return fmt.Errorf("subject id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("subject name is required")
	}

	return nil
}

// TableEntry is one computed standings row for a subject in a league+season.
// Goal difference and points are always derived, never edited independently.
type TableEntry struct {
	LeagueID string
	Season   string
	Subject  SubjectRef

	Played         int
	Won            int
	Drawn          int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
	Rank           int

	DisplayName string
	ComputedAt  time.Time
}
