package memory

import (
	"context"
	"sync"

	"github.com/clubcms/standings-engine/internal/domain/standings"
)

type tableKey struct {
	leagueID string
	season   string
}

type StandingsRepository struct {
	mu     sync.RWMutex
	tables map[tableKey][]standings.TableEntry
}

func NewStandingsRepository() *StandingsRepository {
	return &StandingsRepository{tables: make(map[tableKey][]standings.TableEntry)}
}

func (r *StandingsRepository) ListByLeagueSeason(_ context.Context, leagueID, season string) ([]standings.TableEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.tables[tableKey{leagueID: leagueID, season: season}]
	out := make([]standings.TableEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (r *StandingsRepository) ReplaceByLeagueSeason(_ context.Context, leagueID, season string, entries []standings.TableEntry) error {
	stored := make([]standings.TableEntry, len(entries))
	copy(stored, entries)

	r.mu.Lock()
	r.tables[tableKey{leagueID: leagueID, season: season}] = stored
	r.mu.Unlock()
	return nil
}

func (r *StandingsRepository) ReassignSubject(_ context.Context, leagueID, season string, from, to standings.SubjectRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tableKey{leagueID: leagueID, season: season}
	entries := r.tables[key]
	for i, e := range entries {
		if e.Subject.Key() != from.Key() {
			continue
		}
		e.Subject = to
		e.DisplayName = to.Name
		entries[i] = e
	}
	r.tables[key] = entries
	return nil
}

// Seed installs entries directly, bypassing replace semantics. Test helper.
func (r *StandingsRepository) Seed(leagueID, season string, entries []standings.TableEntry) {
	stored := make([]standings.TableEntry, len(entries))
	copy(stored, entries)

	r.mu.Lock()
	r.tables[tableKey{leagueID: leagueID, season: season}] = stored
	r.mu.Unlock()
}
