package memory

import (
	"context"
	"sync"

	"github.com/clubcms/standings-engine/internal/domain/recalc"
)

type JobRunRepository struct {
	mu   sync.RWMutex
	runs []recalc.JobRun
}

func NewJobRunRepository() *JobRunRepository {
	return &JobRunRepository{}
}

func (r *JobRunRepository) RecordRun(_ context.Context, run recalc.JobRun) error {
	r.mu.Lock()
	r.runs = append(r.runs, run)
	r.mu.Unlock()
	return nil
}

func (r *JobRunRepository) LastSuccessfulRun(_ context.Context, leagueID, season string) (recalc.JobRun, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.runs) - 1; i >= 0; i-- {
		run := r.runs[i]
		if run.LeagueID == leagueID && run.Season == season && run.Status == recalc.StatusDone {
			return run, true, nil
		}
	}
	return recalc.JobRun{}, false, nil
}

// Runs returns a copy of every recorded run. Test helper.
func (r *JobRunRepository) Runs() []recalc.JobRun {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]recalc.JobRun, len(r.runs))
	copy(out, r.runs)
	return out
}
