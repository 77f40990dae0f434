package usecase

import (
	"context"
	"fmt"

	"github.com/clubcms/standings-engine/internal/domain/club"
	"github.com/clubcms/standings-engine/internal/domain/standings"
	"github.com/clubcms/standings-engine/internal/platform/logging"
)

type MigrationResult struct {
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
}

// MigrationService upgrades legacy team-keyed table entries to their club
// equivalents in place. Statistics are carried over untouched so the table
// never shows a visible reset mid-migration. Running it twice changes nothing.
type MigrationService struct {
	tableRepo standings.Repository
	clubRepo  club.Repository
	logger    *logging.Logger
}

func NewMigrationService(tableRepo standings.Repository, clubRepo club.Repository, logger *logging.Logger) *MigrationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MigrationService{
		tableRepo: tableRepo,
		clubRepo:  clubRepo,
		logger:    logger,
	}
}

func (s *MigrationService) MigrateLegacyEntries(ctx context.Context, leagueID, season string) (MigrationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MigrationService.MigrateLegacyEntries")
	defer span.End()

	entries, err := s.tableRepo.ListByLeagueSeason(ctx, leagueID, season)
	if err != nil {
		return MigrationResult{}, MarkTransient(fmt.Errorf("list table entries league=%s season=%s: %w", leagueID, season, err))
	}

	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return MigrationResult{}, MarkTransient(fmt.Errorf("list clubs: %w", err))
	}
	superseded := legacyMapping(clubs)

	existing := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		existing[e.Subject.Key()] = struct{}{}
	}

	var result MigrationResult
	for _, e := range entries {
		if e.Subject.Kind != standings.SubjectTeam {
			continue
		}

		c, ok := superseded[e.Subject.ID]
		if !ok {
			// No club equivalent yet; the entry stays team-based until the
			// CMS links the team to a club.
			result.Skipped++
			continue
		}

		to := standings.SubjectRef{Kind: standings.SubjectClub, ID: c.ID, Name: c.Name}
		if _, taken := existing[to.Key()]; taken {
			// Both representations already have entries; leave it for the
			// validator to flag as a duplicate.
			result.Skipped++
			continue
		}

		if err := s.tableRepo.ReassignSubject(ctx, leagueID, season, e.Subject, to); err != nil {
			return result, MarkTransient(fmt.Errorf("reassign entry %s to %s: %w", e.Subject.Key(), to.Key(), err))
		}
		existing[to.Key()] = struct{}{}

		s.logger.InfoContext(ctx, "migrated legacy table entry",
			"league_id", leagueID,
			"season", season,
			"from", e.Subject.Key(),
			"to", to.Key(),
			"played", e.Played,
			"points", e.Points,
		)
		result.Migrated++
	}

	return result, nil
}
