package memory

import (
	"context"
	"sync"

	"github.com/clubcms/standings-engine/internal/domain/club"
)

type ClubRepository struct {
	mu    sync.RWMutex
	items map[string]club.Club
	order []string
}

func NewClubRepository(clubs []club.Club) *ClubRepository {
	items := make(map[string]club.Club, len(clubs))
	order := make([]string, 0, len(clubs))
	for _, c := range clubs {
		if _, ok := items[c.ID]; !ok {
			order = append(order, c.ID)
		}
		items[c.ID] = c
	}

	return &ClubRepository{items: items, order: order}
}

func (r *ClubRepository) List(_ context.Context) ([]club.Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]club.Club, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *ClubRepository) GetByID(_ context.Context, clubID string) (club.Club, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[clubID]
	if !ok {
		return club.Club{}, false, nil
	}
	return c, true, nil
}
