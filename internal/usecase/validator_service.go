package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubcms/standings-engine/internal/domain/club"
	"github.com/clubcms/standings-engine/internal/domain/consistency"
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/standings"
	"github.com/clubcms/standings-engine/internal/platform/logging"
)

// ValidatorChecks toggles the individual consistency checks.
type ValidatorChecks struct {
	DualRepresentation bool
	OrphanedEntries    bool
	DuplicateSubjects  bool
	SelfPlay           bool
}

func DefaultValidatorChecks() ValidatorChecks {
	return ValidatorChecks{
		DualRepresentation: true,
		OrphanedEntries:    true,
		DuplicateSubjects:  true,
		SelfPlay:           true,
	}
}

// ValidatorService cross-checks match and table-entry data for conflicting
// dual-representation states. It never fails a caller: infrastructure trouble
// is folded into the report as a missing-identity warning at worst, and the
// report always comes back.
type ValidatorService struct {
	matchRepo match.Repository
	clubRepo  club.Repository
	tableRepo standings.Repository
	checks    ValidatorChecks
	logger    *logging.Logger
	now       func() time.Time
}

func NewValidatorService(matchRepo match.Repository, clubRepo club.Repository, tableRepo standings.Repository, checks ValidatorChecks, logger *logging.Logger) *ValidatorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ValidatorService{
		matchRepo: matchRepo,
		clubRepo:  clubRepo,
		tableRepo: tableRepo,
		checks:    checks,
		logger:    logger,
		now:       time.Now,
	}
}

// Validate runs every enabled check and returns the full report. The error
// return exists only for unreachable stores; findings never surface as errors.
func (s *ValidatorService) Validate(ctx context.Context, leagueID, season string) (consistency.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidatorService.Validate")
	defer span.End()

	report := consistency.Report{
		LeagueID:  leagueID,
		Season:    season,
		CheckedAt: s.now().UTC(),
	}

	matches, err := s.matchRepo.ListByLeagueSeason(ctx, leagueID, season)
	if err != nil {
		return report, MarkTransient(fmt.Errorf("list matches for validation league=%s season=%s: %w", leagueID, season, err))
	}
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return report, MarkTransient(fmt.Errorf("list clubs for validation: %w", err))
	}
	superseded := legacyMapping(clubs)

	if s.checks.DualRepresentation {
		s.checkDualRepresentation(matches, &report)
	}
	if s.checks.SelfPlay {
		s.checkSelfPlay(matches, superseded, &report)
	}

	if s.checks.OrphanedEntries || s.checks.DuplicateSubjects {
		entries, err := s.tableRepo.ListByLeagueSeason(ctx, leagueID, season)
		if err != nil {
			return report, MarkTransient(fmt.Errorf("list table entries for validation league=%s season=%s: %w", leagueID, season, err))
		}
		if s.checks.OrphanedEntries {
			s.checkOrphanedEntries(matches, entries, superseded, &report)
		}
		if s.checks.DuplicateSubjects {
			s.checkDuplicateSubjects(entries, superseded, &report)
		}
	}

	return report, nil
}

func (s *ValidatorService) checkDualRepresentation(matches []match.Match, report *consistency.Report) {
	for _, m := range matches {
		if m.HasTeamPair() && m.HasClubPair() {
			report.Warnings = append(report.Warnings, consistency.Finding{
				Code:     consistency.CodeDualRepresentation,
				Severity: consistency.SeverityWarning,
				MatchID:  m.ID,
				Message:  "match carries both a team pair and a club pair; club data takes precedence",
			})
		}
	}
}

func (s *ValidatorService) checkSelfPlay(matches []match.Match, superseded map[string]club.Club, report *consistency.Report) {
	for _, m := range matches {
		home, away := participantKeys(m, superseded)
		if home == "" || away == "" {
			continue
		}
		if home == away {
			report.Errors = append(report.Errors, consistency.Finding{
				Code:     consistency.CodeSelfPlay,
				Severity: consistency.SeverityError,
				MatchID:  m.ID,
				Subject:  home,
				Message:  "home and away resolve to the same subject",
			})
		}
	}
}

func (s *ValidatorService) checkOrphanedEntries(matches []match.Match, entries []standings.TableEntry, superseded map[string]club.Club, report *consistency.Report) {
	referenced := make(map[string]struct{}, len(matches)*2)
	for _, m := range matches {
		home, away := participantKeys(m, superseded)
		if home != "" {
			referenced[home] = struct{}{}
		}
		if away != "" {
			referenced[away] = struct{}{}
		}
	}

	for _, e := range entries {
		key := subjectKeyFor(e.Subject, superseded)
		if _, ok := referenced[key]; ok {
			continue
		}
		report.Warnings = append(report.Warnings, consistency.Finding{
			Code:     consistency.CodeOrphanedEntry,
			Severity: consistency.SeverityWarning,
			Subject:  e.Subject.Key(),
			Message:  "table entry references a subject absent from every match; candidate for pruning",
		})
	}
}

func (s *ValidatorService) checkDuplicateSubjects(entries []standings.TableEntry, superseded map[string]club.Club, report *consistency.Report) {
	byKey := make(map[string][]string, len(entries))
	for _, e := range entries {
		key := subjectKeyFor(e.Subject, superseded)
		byKey[key] = append(byKey[key], e.Subject.Key())
	}

	for key, raws := range byKey {
		if len(raws) < 2 {
			continue
		}
		report.Errors = append(report.Errors, consistency.Finding{
			Code:     consistency.CodeDuplicateSubject,
			Severity: consistency.SeverityError,
			Subject:  key,
			Message:  fmt.Sprintf("entries %s resolve to the same subject", strings.Join(raws, ", ")),
		})
	}
}
