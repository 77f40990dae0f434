package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/clubcms/standings-engine/internal/domain/consistency"
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/recalc"
	"github.com/clubcms/standings-engine/internal/domain/standings"
	"github.com/clubcms/standings-engine/internal/platform/logging"
)

// Engine is the surface the surrounding platform talks to: cache-backed table
// reads, the administrative recalculation trigger, consistency reports, and
// the fire-and-forget match-lifecycle hook.
type Engine struct {
	calc       *CalculationService
	validator  *ValidatorService
	queue      *RecalcQueue
	reportRepo consistency.Repository
	runRepo    recalc.Repository
	logger     *logging.Logger
}

func NewEngine(
	calc *CalculationService,
	validator *ValidatorService,
	queue *RecalcQueue,
	reportRepo consistency.Repository,
	runRepo recalc.Repository,
	logger *logging.Logger,
) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		calc:       calc,
		validator:  validator,
		queue:      queue,
		reportRepo: reportRepo,
		runRepo:    runRepo,
		logger:     logger,
	}
}

// OnMatchChanged is the subscription callback for match store notifications.
// It only enqueues; it never blocks the write path that produced the event
// and never propagates errors back to it.
func (e *Engine) OnMatchChanged(ev match.Event) {
	if strings.TrimSpace(ev.LeagueID) == "" || strings.TrimSpace(ev.Season) == "" {
		e.logger.Warn("dropping match event without league scope",
			"match_id", ev.MatchID, "kind", ev.Kind)
		return
	}
	e.queue.Enqueue(ev.LeagueID, ev.Season)
}

func (e *Engine) GetTable(ctx context.Context, leagueID, season string) ([]standings.TableEntry, error) {
	return e.calc.GetTable(ctx, leagueID, season)
}

// ForceRecalculate bypasses the debounce for operator use.
func (e *Engine) ForceRecalculate(ctx context.Context, leagueID, season string) error {
	_, span := startUsecaseSpan(ctx, "usecase.Engine.ForceRecalculate")
	defer span.End()

	return e.queue.Force(leagueID, season)
}

// GetConsistencyReport returns the latest persisted report, computing one on
// demand when nothing is stored yet.
func (e *Engine) GetConsistencyReport(ctx context.Context, leagueID, season string) (consistency.Report, error) {
	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	if leagueID == "" || season == "" {
		return consistency.Report{}, fmt.Errorf("%w: league id and season are required", ErrInvalidInput)
	}

	if e.reportRepo != nil {
		report, ok, err := e.reportRepo.LatestReport(ctx, leagueID, season)
		if err != nil {
			e.logger.WarnContext(ctx, "load stored consistency report failed",
				"league_id", leagueID, "season", season, "error", err)
		} else if ok {
			return report, nil
		}
	}

	return e.validator.Validate(ctx, leagueID, season)
}

// LastSuccessfulRun reports when the table for a league+season was last fully
// recalculated.
func (e *Engine) LastSuccessfulRun(ctx context.Context, leagueID, season string) (recalc.JobRun, bool, error) {
	if e.runRepo == nil {
		return recalc.JobRun{}, false, nil
	}
	return e.runRepo.LastSuccessfulRun(ctx, leagueID, season)
}

// QueueStats exposes the queue snapshot for dashboards.
func (e *Engine) QueueStats() QueueStats {
	return e.queue.Stats()
}
