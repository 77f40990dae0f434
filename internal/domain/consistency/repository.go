package consistency

import "context"

// Repository keeps the latest report per league+season for operator reads.
type Repository interface {
	SaveReport(ctx context.Context, report Report) error
	LatestReport(ctx context.Context, leagueID, season string) (Report, bool, error)
}
