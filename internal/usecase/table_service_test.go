package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubcms/standings-engine/internal/domain/club"
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/standings"
	"github.com/clubcms/standings-engine/internal/domain/team"
	"github.com/clubcms/standings-engine/internal/infrastructure/repository/memory"
	"github.com/clubcms/standings-engine/internal/platform/cache"
)

type calcFixture struct {
	matches *memory.MatchRepository
	clubs   *memory.ClubRepository
	table   *memory.StandingsRepository
	reports *memory.ConsistencyRepository
	cache   *cache.Store
	calc    *CalculationService
}

func newCalcFixture(t *testing.T, matches []match.Match, clubs []club.Club, teams []team.Team) *calcFixture {
	t.Helper()

	f := &calcFixture{
		matches: memory.NewMatchRepository(matches),
		clubs:   memory.NewClubRepository(clubs),
		table:   memory.NewStandingsRepository(),
		reports: memory.NewConsistencyRepository(),
		cache:   cache.NewStore(time.Minute),
	}

	teamRepo := memory.NewTeamRepository(teams)
	resolver := NewResolverService(f.matches, f.clubs, teamRepo, nil)
	validator := NewValidatorService(f.matches, f.clubs, f.table, DefaultValidatorChecks(), nil)
	migrator := NewMigrationService(f.table, f.clubs, nil)
	f.calc = NewCalculationService(f.matches, f.clubs, f.table, resolver, validator, migrator, f.reports, f.cache, nil)

	return f
}

func threeClubs() []club.Club {
	return []club.Club{
		{ID: "club-a", Name: "FC Adler"},
		{ID: "club-b", Name: "SV Falke"},
		{ID: "club-c", Name: "TSV Bussard"},
	}
}

func TestCalculationService_RanksByPointsThenGoalDifference(t *testing.T) {
	t.Parallel()

	f := newCalcFixture(t, []match.Match{
		finishedMatch("m1", "club-a", "club-b", 3, 1),
		finishedMatch("m2", "club-b", "club-c", 0, 0),
	}, threeClubs(), nil)

	if err := f.calc.Recalculate(context.Background(), "liga-1", "2025-26"); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	entries, err := f.calc.GetTable(context.Background(), "liga-1", "2025-26")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entry count: got=%d want=3", len(entries))
	}

	// A won (3 pts), C drew (1 pt, GD 0), B drew and lost (1 pt, GD -2).
	wantOrder := []string{"club:club-a", "club:club-c", "club:club-b"}
	for i, want := range wantOrder {
		if entries[i].Subject.Key() != want {
			t.Fatalf("rank %d: got=%s want=%s (table %v)", i+1, entries[i].Subject.Key(), want, entries)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("rank field: got=%d want=%d", entries[i].Rank, i+1)
		}
	}

	top := entries[0]
	if top.Points != 3 || top.GoalDifference != 2 {
		t.Fatalf("leader stats: got points=%d gd=%d want 3/2", top.Points, top.GoalDifference)
	}
}

func TestCalculationService_RecalculateIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newCalcFixture(t, []match.Match{
		finishedMatch("m1", "club-a", "club-b", 2, 2),
	}, threeClubs(), nil)

	ctx := context.Background()
	if err := f.calc.Recalculate(ctx, "liga-1", "2025-26"); err != nil {
		t.Fatalf("first recalculate: %v", err)
	}
	first, _ := f.table.ListByLeagueSeason(ctx, "liga-1", "2025-26")

	if err := f.calc.Recalculate(ctx, "liga-1", "2025-26"); err != nil {
		t.Fatalf("second recalculate: %v", err)
	}
	second, _ := f.table.ListByLeagueSeason(ctx, "liga-1", "2025-26")

	if len(first) != len(second) {
		t.Fatalf("entry count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Subject.Key() != b.Subject.Key() || a.Points != b.Points || a.Rank != b.Rank {
			t.Fatalf("entry %d drifted between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestCalculationService_ConsistencyErrorKeepsPreviousTable(t *testing.T) {
	t.Parallel()

	f := newCalcFixture(t, []match.Match{
		finishedMatch("m1", "club-a", "club-b", 1, 0),
	}, threeClubs(), nil)

	ctx := context.Background()
	if err := f.calc.Recalculate(ctx, "liga-1", "2025-26"); err != nil {
		t.Fatalf("initial recalculate: %v", err)
	}
	before, _ := f.table.ListByLeagueSeason(ctx, "liga-1", "2025-26")

	// A self-play row turns the next run into a blocked one.
	f.matches.Upsert(finishedMatch("m-bad", "club-c", "club-c", 9, 0))

	err := f.calc.Recalculate(ctx, "liga-1", "2025-26")
	if !errors.Is(err, ErrConsistencyBlocked) {
		t.Fatalf("expected ErrConsistencyBlocked, got %v", err)
	}

	after, _ := f.table.ListByLeagueSeason(ctx, "liga-1", "2025-26")
	if len(after) != len(before) {
		t.Fatalf("blocked run must not touch the table: before=%d after=%d", len(before), len(after))
	}

	// The report still has to be persisted for the operator.
	report, ok, repErr := f.reports.LatestReport(ctx, "liga-1", "2025-26")
	if repErr != nil || !ok {
		t.Fatalf("latest report: ok=%t err=%v", ok, repErr)
	}
	if !report.HasErrors() {
		t.Fatal("persisted report must carry the blocking findings")
	}
}

func TestCalculationService_RecalculateInvalidatesCachedTable(t *testing.T) {
	t.Parallel()

	f := newCalcFixture(t, []match.Match{
		finishedMatch("m1", "club-a", "club-b", 1, 0),
	}, threeClubs(), nil)

	ctx := context.Background()
	if err := f.calc.Recalculate(ctx, "liga-1", "2025-26"); err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if _, err := f.calc.GetTable(ctx, "liga-1", "2025-26"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	// New result arrives and the league is recalculated.
	f.matches.Upsert(finishedMatch("m2", "club-b", "club-a", 4, 0))
	if err := f.calc.Recalculate(ctx, "liga-1", "2025-26"); err != nil {
		t.Fatalf("second recalculate: %v", err)
	}

	entries, err := f.calc.GetTable(ctx, "liga-1", "2025-26")
	if err != nil {
		t.Fatalf("get table after invalidation: %v", err)
	}
	if entries[0].Subject.Key() != "club:club-b" {
		t.Fatalf("stale table served after recalculation: leader=%s", entries[0].Subject.Key())
	}
}

func TestCalculationService_RecalculatePrimesSubjectStatsCache(t *testing.T) {
	t.Parallel()

	f := newCalcFixture(t, []match.Match{
		finishedMatch("m1", "club-a", "club-b", 2, 0),
	}, threeClubs(), nil)

	ctx := context.Background()
	if err := f.calc.Recalculate(ctx, "liga-1", "2025-26"); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	// A result that arrives after the run must not leak into stat reads
	// until the next recalculation: the run's own aggregates are cached.
	f.matches.Upsert(finishedMatch("m2", "club-a", "club-c", 5, 0))

	subject := standings.SubjectRef{Kind: standings.SubjectClub, ID: "club-a", Name: "FC Adler"}
	stats, err := f.calc.GetSubjectStats(ctx, "liga-1", "2025-26", subject)
	if err != nil {
		t.Fatalf("get subject stats: %v", err)
	}
	if stats.Played != 1 || stats.GoalsFor != 2 {
		t.Fatalf("stats must come from the completed run, got %+v", stats)
	}

	if err := f.calc.Recalculate(ctx, "liga-1", "2025-26"); err != nil {
		t.Fatalf("second recalculate: %v", err)
	}
	stats, err = f.calc.GetSubjectStats(ctx, "liga-1", "2025-26", subject)
	if err != nil {
		t.Fatalf("get subject stats after recalculation: %v", err)
	}
	if stats.Played != 2 || stats.GoalsFor != 7 {
		t.Fatalf("stale aggregate served after recalculation: %+v", stats)
	}
}

func TestCalculationService_GetSubjectStatsFallsBackToLoader(t *testing.T) {
	t.Parallel()

	f := newCalcFixture(t, []match.Match{
		finishedMatch("m1", "club-a", "club-b", 2, 1),
	}, threeClubs(), nil)

	stats, err := f.calc.GetSubjectStats(context.Background(), "liga-1", "2025-26",
		standings.SubjectRef{Kind: standings.SubjectClub, ID: "club-a", Name: "FC Adler"})
	if err != nil {
		t.Fatalf("get subject stats: %v", err)
	}
	if stats.Played != 1 || stats.Points != 3 || stats.GoalsFor != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCalculationService_RejectsEmptyScope(t *testing.T) {
	t.Parallel()

	f := newCalcFixture(t, nil, threeClubs(), nil)

	if err := f.calc.Recalculate(context.Background(), " ", "2025-26"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.calc.GetTable(context.Background(), "liga-1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
