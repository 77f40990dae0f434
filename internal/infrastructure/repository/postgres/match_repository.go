package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubcms/standings-engine/internal/domain/match"
	qb "github.com/clubcms/standings-engine/internal/platform/querybuilder"
)

// MatchRepository reads the match store. The engine never writes matches, so
// this repository is read-only on purpose.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ListByLeagueSeason(ctx context.Context, leagueID, season string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.IsNull("deleted_at"),
		).
		OrderBy("matchday", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.Match{
			ID:         row.ID,
			LeagueID:   row.LeagueID,
			Season:     row.Season,
			Matchday:   row.Matchday,
			Status:     match.NormalizeStatus(row.Status),
			HomeTeamID: row.HomeTeamID.String,
			AwayTeamID: row.AwayTeamID.String,
			HomeClubID: row.HomeClubID.String,
			AwayClubID: row.AwayClubID.String,
			HomeGoals:  nullIntToIntPtr(row.HomeGoals),
			AwayGoals:  nullIntToIntPtr(row.AwayGoals),
			UpdatedAt:  row.UpdatedAt,
		})
	}

	return out, nil
}
