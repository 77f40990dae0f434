package recalc

import "context"

type Repository interface {
	RecordRun(ctx context.Context, run JobRun) error
	LastSuccessfulRun(ctx context.Context, leagueID, season string) (JobRun, bool, error)
}
