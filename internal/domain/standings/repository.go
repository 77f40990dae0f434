package standings

import "context"

// Repository persists table entries. The calculation engine is the only
// writer; replacement is a single logical operation per league+season so a
// half-written table is never observable.
type Repository interface {
	ListByLeagueSeason(ctx context.Context, leagueID, season string) ([]TableEntry, error)
	ReplaceByLeagueSeason(ctx context.Context, leagueID, season string, entries []TableEntry) error

	// ReassignSubject rewrites the subject reference of an existing entry in
	// place, preserving its accumulated statistics. Used by the legacy
	// migration; a missing source entry is not an error.
	ReassignSubject(ctx context.Context, leagueID, season string, from, to SubjectRef) error
}
