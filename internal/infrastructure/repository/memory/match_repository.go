package memory

import (
	"context"
	"sync"

	"github.com/clubcms/standings-engine/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
	order []string
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	items := make(map[string]match.Match, len(matches))
	order := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := items[m.ID]; !ok {
			order = append(order, m.ID)
		}
		items[m.ID] = m
	}

	return &MatchRepository{items: items, order: order}
}

func (r *MatchRepository) ListByLeagueSeason(_ context.Context, leagueID, season string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, id := range r.order {
		m := r.items[id]
		if m.LeagueID == leagueID && m.Season == season {
			out = append(out, m)
		}
	}
	return out, nil
}

// Upsert mimics the match store's write path so tests and local development
// can mutate matches and fire events.
func (r *MatchRepository) Upsert(m match.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[m.ID]; !ok {
		r.order = append(r.order, m.ID)
	}
	r.items[m.ID] = m
}

func (r *MatchRepository) Delete(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, matchID)
	for i, id := range r.order {
		if id == matchID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
