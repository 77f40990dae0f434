package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/clubcms/standings-engine/internal/domain/club"
	"github.com/clubcms/standings-engine/internal/domain/consistency"
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/standings"
	"github.com/clubcms/standings-engine/internal/platform/cache"
	"github.com/clubcms/standings-engine/internal/platform/logging"
)

const defaultAggregatorFanout = 4

// CalculationService runs the full recalculation pipeline for one
// league+season and serves cache-backed table reads. Table entries are
// written by this service alone.
type CalculationService struct {
	matchRepo  match.Repository
	clubRepo   club.Repository
	tableRepo  standings.Repository
	resolver   *ResolverService
	validator  *ValidatorService
	migrator   *MigrationService
	reportRepo consistency.Repository
	cache      *cache.Store
	logger     *logging.Logger
	fanout     int
	now        func() time.Time
}

func NewCalculationService(
	matchRepo match.Repository,
	clubRepo club.Repository,
	tableRepo standings.Repository,
	resolver *ResolverService,
	validator *ValidatorService,
	migrator *MigrationService,
	reportRepo consistency.Repository,
	cacheStore *cache.Store,
	logger *logging.Logger,
) *CalculationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CalculationService{
		matchRepo:  matchRepo,
		clubRepo:   clubRepo,
		tableRepo:  tableRepo,
		resolver:   resolver,
		validator:  validator,
		migrator:   migrator,
		reportRepo: reportRepo,
		cache:      cacheStore,
		logger:     logger,
		fanout:     defaultAggregatorFanout,
		now:        time.Now,
	}
}

// Recalculate runs the pipeline: migrate legacy entries, resolve subjects,
// validate, aggregate, then replace the stored table.
// Consistency errors keep the previous table authoritative and surface as
// ErrConsistencyBlocked; the report is persisted either way.
func (s *CalculationService) Recalculate(ctx context.Context, leagueID, season string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalculationService.Recalculate")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	if leagueID == "" || season == "" {
		return fmt.Errorf("%w: league id and season are required", ErrInvalidInput)
	}

	migration, err := s.migrator.MigrateLegacyEntries(ctx, leagueID, season)
	if err != nil {
		return fmt.Errorf("migrate legacy entries: %w", err)
	}
	if migration.Migrated > 0 {
		s.logger.InfoContext(ctx, "legacy entries migrated before recalculation",
			"league_id", leagueID, "season", season,
			"migrated", migration.Migrated, "skipped", migration.Skipped)
	}

	subjects, err := s.resolver.ResolveSubjects(ctx, leagueID, season)
	if err != nil {
		return fmt.Errorf("resolve subjects: %w", err)
	}

	report, err := s.validator.Validate(ctx, leagueID, season)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	s.saveReport(ctx, report)
	if report.HasErrors() {
		return fmt.Errorf("%w: league=%s season=%s errors=%d", ErrConsistencyBlocked, leagueID, season, len(report.Errors))
	}

	matches, err := s.matchRepo.ListByLeagueSeason(ctx, leagueID, season)
	if err != nil {
		return MarkTransient(fmt.Errorf("list matches league=%s season=%s: %w", leagueID, season, err))
	}
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return MarkTransient(fmt.Errorf("list clubs: %w", err))
	}
	superseded := legacyMapping(clubs)
	participants := func(m match.Match) (string, string) {
		return participantKeys(m, superseded)
	}

	computedAt := s.now().UTC()
	entries := make([]standings.TableEntry, len(subjects))
	statsBySubject := make([]SubjectStats, len(subjects))

	workers := pool.New().WithMaxGoroutines(s.aggregatorFanout())
	for i, subject := range subjects {
		i, subject := i, subject
		workers.Go(func() {
			stats := ComputeStats(subject, matches, participants)
			statsBySubject[i] = stats
			entries[i] = standings.TableEntry{
				LeagueID:       leagueID,
				Season:         season,
				Subject:        subject,
				Played:         stats.Played,
				Won:            stats.Won,
				Drawn:          stats.Drawn,
				Lost:           stats.Lost,
				GoalsFor:       stats.GoalsFor,
				GoalsAgainst:   stats.GoalsAgainst,
				GoalDifference: stats.GoalDifference(),
				Points:         stats.Points,
				DisplayName:    subject.Name,
				ComputedAt:     computedAt,
			}
		})
	}
	workers.Wait()

	rankEntries(entries)

	if err := s.tableRepo.ReplaceByLeagueSeason(ctx, leagueID, season, entries); err != nil {
		return MarkTransient(fmt.Errorf("replace table league=%s season=%s: %w", leagueID, season, err))
	}

	// Invalidation is explicit; TTL is only the safety net for crashes. The
	// per-subject aggregates are re-primed from this run so stat reads
	// between recalculations stay warm.
	s.cache.DeletePrefix(ctx, tableKeyPrefix(leagueID, season))
	s.cache.DeletePrefix(ctx, statsKeyPrefix(leagueID, season))
	for i, subject := range subjects {
		s.cache.Set(ctx, subjectStatsKey(leagueID, season, subject.Key()), statsBySubject[i])
	}

	s.logger.InfoContext(ctx, "table recalculated",
		"league_id", leagueID, "season", season,
		"subjects", len(subjects), "warnings", len(report.Warnings))

	return nil
}

// GetTable serves the ranked table, memoized per league+season. A nil cache
// falls through to the store.
func (s *CalculationService) GetTable(ctx context.Context, leagueID, season string) ([]standings.TableEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalculationService.GetTable")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	if leagueID == "" || season == "" {
		return nil, fmt.Errorf("%w: league id and season are required", ErrInvalidInput)
	}

	value, err := s.cache.GetOrLoad(ctx, tableKey(leagueID, season), func(ctx context.Context) (any, error) {
		entries, err := s.tableRepo.ListByLeagueSeason(ctx, leagueID, season)
		if err != nil {
			return nil, MarkTransient(fmt.Errorf("list table league=%s season=%s: %w", leagueID, season, err))
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}

	entries, ok := value.([]standings.TableEntry)
	if !ok {
		return nil, fmt.Errorf("unexpected cached table type %T", value)
	}
	return entries, nil
}

// GetSubjectStats serves the memoized per-subject aggregate, recomputing from
// the match store on a miss.
func (s *CalculationService) GetSubjectStats(ctx context.Context, leagueID, season string, subject standings.SubjectRef) (SubjectStats, error) {
	if err := subject.Validate(); err != nil {
		return SubjectStats{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	value, err := s.cache.GetOrLoad(ctx, subjectStatsKey(leagueID, season, subject.Key()), func(ctx context.Context) (any, error) {
		matches, err := s.matchRepo.ListByLeagueSeason(ctx, leagueID, season)
		if err != nil {
			return nil, MarkTransient(fmt.Errorf("list matches league=%s season=%s: %w", leagueID, season, err))
		}
		clubs, err := s.clubRepo.List(ctx)
		if err != nil {
			return nil, MarkTransient(fmt.Errorf("list clubs: %w", err))
		}
		superseded := legacyMapping(clubs)
		return ComputeStats(subject, matches, func(m match.Match) (string, string) {
			return participantKeys(m, superseded)
		}), nil
	})
	if err != nil {
		return SubjectStats{}, err
	}

	stats, ok := value.(SubjectStats)
	if !ok {
		return SubjectStats{}, fmt.Errorf("unexpected cached stats type %T", value)
	}
	return stats, nil
}

func (s *CalculationService) aggregatorFanout() int {
	if s.fanout < 1 {
		return defaultAggregatorFanout
	}
	return s.fanout
}

func (s *CalculationService) saveReport(ctx context.Context, report consistency.Report) {
	if s.reportRepo == nil {
		return
	}
	if err := s.reportRepo.SaveReport(ctx, report); err != nil {
		s.logger.WarnContext(ctx, "persist consistency report failed",
			"league_id", report.LeagueID, "season", report.Season, "error", err)
	}
}

// rankEntries sorts by points desc, goal difference desc, goals-for desc,
// name asc, then assigns 1-based ranks. Name is the final key, so order is
// always deterministic.
func rankEntries(entries []standings.TableEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.DisplayName < b.DisplayName
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func tableKey(leagueID, season string) string {
	return tableKeyPrefix(leagueID, season) + "full"
}

func tableKeyPrefix(leagueID, season string) string {
	return "table:" + leagueID + ":" + season + ":"
}

func subjectStatsKey(leagueID, season, subjectKey string) string {
	return statsKeyPrefix(leagueID, season) + subjectKey
}

func statsKeyPrefix(leagueID, season string) string {
	return "stats:" + leagueID + ":" + season + ":"
}
