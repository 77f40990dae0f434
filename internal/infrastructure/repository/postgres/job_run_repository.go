package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubcms/standings-engine/internal/domain/recalc"
	qb "github.com/clubcms/standings-engine/internal/platform/querybuilder"
)

type jobRunModel struct {
	RunID      string         `db:"run_id"`
	LeagueID   string         `db:"league_id"`
	Season     string         `db:"season"`
	Trigger    string         `db:"trigger"`
	Status     string         `db:"status"`
	Attempt    int            `db:"attempt"`
	LastError  sql.NullString `db:"last_error"`
	EnqueuedAt sql.NullTime   `db:"enqueued_at"`
	StartedAt  sql.NullTime   `db:"started_at"`
	FinishedAt sql.NullTime   `db:"finished_at"`
	DurationMs int64          `db:"duration_ms"`
	TraceID    sql.NullString `db:"trace_id"`
	SpanID     sql.NullString `db:"span_id"`
}

type JobRunRepository struct {
	db *sqlx.DB
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

func (r *JobRunRepository) RecordRun(ctx context.Context, run recalc.JobRun) error {
	model := jobRunModel{
		RunID:      run.RunID,
		LeagueID:   run.LeagueID,
		Season:     run.Season,
		Trigger:    string(run.Trigger),
		Status:     string(run.Status),
		Attempt:    run.Attempt,
		LastError:  sql.NullString{String: run.LastError, Valid: run.LastError != ""},
		EnqueuedAt: timeToNullTime(run.EnqueuedAt),
		StartedAt:  timeToNullTime(run.StartedAt),
		FinishedAt: timeToNullTime(run.FinishedAt),
		DurationMs: run.DurationMs,
		TraceID:    sql.NullString{String: run.TraceID, Valid: run.TraceID != ""},
		SpanID:     sql.NullString{String: run.SpanID, Valid: run.SpanID != ""},
	}

	// One row per (run, attempt); later records upgrade it in place, from
	// pending through running to its final status.
	query, args, err := qb.InsertModel("job_runs", model, `ON CONFLICT (run_id, attempt)
DO UPDATE SET
    status = EXCLUDED.status,
    last_error = EXCLUDED.last_error,
    started_at = EXCLUDED.started_at,
    finished_at = EXCLUDED.finished_at,
    duration_ms = EXCLUDED.duration_ms,
    trace_id = EXCLUDED.trace_id,
    span_id = EXCLUDED.span_id`)
	if err != nil {
		return fmt.Errorf("build record job run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record job run %s attempt=%d: %w", run.RunID, run.Attempt, err)
	}
	return nil
}

func (r *JobRunRepository) LastSuccessfulRun(ctx context.Context, leagueID, season string) (recalc.JobRun, bool, error) {
	query, args, err := qb.Select("*").From("job_runs").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Eq("status", string(recalc.StatusDone)),
		).
		OrderBy("finished_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return recalc.JobRun{}, false, fmt.Errorf("build last successful run query: %w", err)
	}

	var row jobRunModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return recalc.JobRun{}, false, nil
		}
		return recalc.JobRun{}, false, fmt.Errorf("get last successful run: %w", err)
	}

	return recalc.JobRun{
		RunID:      row.RunID,
		LeagueID:   row.LeagueID,
		Season:     row.Season,
		Trigger:    recalc.Trigger(row.Trigger),
		Status:     recalc.RunStatus(row.Status),
		Attempt:    row.Attempt,
		LastError:  row.LastError.String,
		EnqueuedAt: nullTimeValue(row.EnqueuedAt),
		StartedAt:  nullTimeValue(row.StartedAt),
		FinishedAt: nullTimeValue(row.FinishedAt),
		DurationMs: row.DurationMs,
		TraceID:    row.TraceID.String,
		SpanID:     row.SpanID.String,
	}, true, nil
}

func nullTimeValue(value sql.NullTime) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return value.Time
}
