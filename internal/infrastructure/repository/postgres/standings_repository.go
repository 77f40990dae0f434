package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubcms/standings-engine/internal/domain/standings"
	qb "github.com/clubcms/standings-engine/internal/platform/querybuilder"
)

type StandingsRepository struct {
	db *sqlx.DB
}

func NewStandingsRepository(db *sqlx.DB) *StandingsRepository {
	return &StandingsRepository{db: db}
}

func (r *StandingsRepository) ListByLeagueSeason(ctx context.Context, leagueID, season string) ([]standings.TableEntry, error) {
	query, args, err := qb.Select("*").From("table_entries").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.IsNull("deleted_at"),
		).
		OrderBy("rank", "points DESC", "goal_difference DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list table entries query: %w", err)
	}

	var rows []tableEntryModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list table entries: %w", err)
	}

	out := make([]standings.TableEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, standings.TableEntry{
			LeagueID: row.LeagueID,
			Season:   row.Season,
			Subject: standings.SubjectRef{
				Kind: standings.SubjectKind(row.SubjectKind),
				ID:   row.SubjectID,
				Name: row.DisplayName,
			},
			Played:         row.Played,
			Won:            row.Won,
			Drawn:          row.Drawn,
			Lost:           row.Lost,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference,
			Points:         row.Points,
			Rank:           row.Rank,
			DisplayName:    row.DisplayName,
			ComputedAt:     row.ComputedAt,
		})
	}

	return out, nil
}

// ReplaceByLeagueSeason swaps the whole table in one transaction: soft-delete
// every live row for the key, then upsert the new set. Readers either see the
// old table or the new one, never a half-written mix.
func (r *StandingsRepository) ReplaceByLeagueSeason(ctx context.Context, leagueID, season string, entries []standings.TableEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace table entries: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.Update("table_entries").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear table entries query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear table entries: %w", err)
	}

	for _, item := range entries {
		insertModel := tableEntryInsertModel{
			LeagueID:       leagueID,
			Season:         season,
			SubjectKind:    string(item.Subject.Kind),
			SubjectID:      item.Subject.ID,
			DisplayName:    item.DisplayName,
			Played:         item.Played,
			Won:            item.Won,
			Drawn:          item.Drawn,
			Lost:           item.Lost,
			GoalsFor:       item.GoalsFor,
			GoalsAgainst:   item.GoalsAgainst,
			GoalDifference: item.GoalDifference,
			Points:         item.Points,
			Rank:           item.Rank,
			ComputedAt:     item.ComputedAt,
		}
		query, args, err := qb.InsertModel("table_entries", insertModel, `ON CONFLICT (league_id, season, subject_kind, subject_id) WHERE deleted_at IS NULL
DO UPDATE SET
    display_name = EXCLUDED.display_name,
    played = EXCLUDED.played,
    won = EXCLUDED.won,
    drawn = EXCLUDED.drawn,
    lost = EXCLUDED.lost,
    goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against,
    goal_difference = EXCLUDED.goal_difference,
    points = EXCLUDED.points,
    rank = EXCLUDED.rank,
    computed_at = EXCLUDED.computed_at,
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert table entry query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert table entry subject=%s: %w", item.Subject.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace table entries tx: %w", err)
	}
	return nil
}

func (r *StandingsRepository) ReassignSubject(ctx context.Context, leagueID, season string, from, to standings.SubjectRef) error {
	query, args, err := qb.Update("table_entries").
		Set("subject_kind", string(to.Kind)).
		Set("subject_id", to.ID).
		Set("display_name", to.Name).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Eq("subject_kind", string(from.Kind)),
			qb.Eq("subject_id", from.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reassign subject query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reassign subject %s to %s: %w", from.Key(), to.Key(), err)
	}
	return nil
}
