package match

import "context"

// Repository exposes read access to the match store. The calculation engine
// never writes matches.
type Repository interface {
	ListByLeagueSeason(ctx context.Context, leagueID, season string) ([]Match, error)
}
