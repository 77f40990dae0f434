package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubcms/standings-engine/internal/domain/consistency"
	qb "github.com/clubcms/standings-engine/internal/platform/querybuilder"
)

type consistencyReportModel struct {
	LeagueID  string    `db:"league_id"`
	Season    string    `db:"season"`
	Findings  []byte    `db:"findings"`
	CheckedAt time.Time `db:"checked_at"`
}

type reportPayload struct {
	Errors   []consistency.Finding `json:"errors"`
	Warnings []consistency.Finding `json:"warnings"`
}

type ConsistencyRepository struct {
	db *sqlx.DB
}

func NewConsistencyRepository(db *sqlx.DB) *ConsistencyRepository {
	return &ConsistencyRepository{db: db}
}

func (r *ConsistencyRepository) SaveReport(ctx context.Context, report consistency.Report) error {
	findings, err := encodePayload(reportPayload{
		Errors:   report.Errors,
		Warnings: report.Warnings,
	})
	if err != nil {
		return fmt.Errorf("encode consistency findings: %w", err)
	}

	model := consistencyReportModel{
		LeagueID:  report.LeagueID,
		Season:    report.Season,
		Findings:  findings,
		CheckedAt: report.CheckedAt,
	}
	query, args, err := qb.InsertModel("consistency_reports", model, `ON CONFLICT (league_id, season)
DO UPDATE SET
    findings = EXCLUDED.findings,
    checked_at = EXCLUDED.checked_at`)
	if err != nil {
		return fmt.Errorf("build save consistency report query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save consistency report league=%s season=%s: %w", report.LeagueID, report.Season, err)
	}
	return nil
}

func (r *ConsistencyRepository) LatestReport(ctx context.Context, leagueID, season string) (consistency.Report, bool, error) {
	query, args, err := qb.Select("*").From("consistency_reports").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return consistency.Report{}, false, fmt.Errorf("build latest report query: %w", err)
	}

	var row consistencyReportModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return consistency.Report{}, false, nil
		}
		return consistency.Report{}, false, fmt.Errorf("get consistency report: %w", err)
	}

	var payload reportPayload
	if err := decodePayload(row.Findings, &payload); err != nil {
		return consistency.Report{}, false, fmt.Errorf("decode consistency findings: %w", err)
	}

	return consistency.Report{
		LeagueID:  row.LeagueID,
		Season:    row.Season,
		Errors:    payload.Errors,
		Warnings:  payload.Warnings,
		CheckedAt: row.CheckedAt,
	}, true, nil
}
