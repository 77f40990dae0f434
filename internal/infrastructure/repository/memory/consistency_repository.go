package memory

import (
	"context"
	"sync"

	"github.com/clubcms/standings-engine/internal/domain/consistency"
)

type ConsistencyRepository struct {
	mu      sync.RWMutex
	reports map[tableKey]consistency.Report
}

func NewConsistencyRepository() *ConsistencyRepository {
	return &ConsistencyRepository{reports: make(map[tableKey]consistency.Report)}
}

func (r *ConsistencyRepository) SaveReport(_ context.Context, report consistency.Report) error {
	r.mu.Lock()
	r.reports[tableKey{leagueID: report.LeagueID, season: report.Season}] = report
	r.mu.Unlock()
	return nil
}

func (r *ConsistencyRepository) LatestReport(_ context.Context, leagueID, season string) (consistency.Report, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[tableKey{leagueID: leagueID, season: season}]
	return report, ok, nil
}
