package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/clubcms/standings-engine/internal/domain/club"
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/standings"
	"github.com/clubcms/standings-engine/internal/domain/team"
	"github.com/clubcms/standings-engine/internal/platform/logging"
)

// ResolverService produces the de-duplicated set of standings subjects for a
// league+season: clubs first, legacy teams only where no club supersedes them.
type ResolverService struct {
	matchRepo match.Repository
	clubRepo  club.Repository
	teamRepo  team.Repository
	logger    *logging.Logger
}

func NewResolverService(matchRepo match.Repository, clubRepo club.Repository, teamRepo team.Repository, logger *logging.Logger) *ResolverService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResolverService{
		matchRepo: matchRepo,
		clubRepo:  clubRepo,
		teamRepo:  teamRepo,
		logger:    logger,
	}
}

func (s *ResolverService) ResolveSubjects(ctx context.Context, leagueID, season string) ([]standings.SubjectRef, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolveSubjects")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	if leagueID == "" || season == "" {
		return nil, fmt.Errorf("%w: league id and season are required", ErrInvalidInput)
	}

	matches, err := s.matchRepo.ListByLeagueSeason(ctx, leagueID, season)
	if err != nil {
		return nil, MarkTransient(fmt.Errorf("list matches for league=%s season=%s: %w", leagueID, season, err))
	}

	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, MarkTransient(fmt.Errorf("list clubs: %w", err))
	}
	superseded := legacyMapping(clubs)

	clubIDs := make(map[string]struct{})
	teamIDs := make(map[string]struct{})
	for _, m := range matches {
		if m.HomeClubID != "" {
			clubIDs[m.HomeClubID] = struct{}{}
		}
		if m.AwayClubID != "" {
			clubIDs[m.AwayClubID] = struct{}{}
		}
		if m.HomeTeamID != "" {
			teamIDs[m.HomeTeamID] = struct{}{}
		}
		if m.AwayTeamID != "" {
			teamIDs[m.AwayTeamID] = struct{}{}
		}
	}

	// Teams superseded by a club collapse onto that club, so the club is a
	// subject even when only its legacy team appears in matches.
	for teamID := range teamIDs {
		if c, ok := superseded[teamID]; ok {
			clubIDs[c.ID] = struct{}{}
			delete(teamIDs, teamID)
		}
	}

	seen := make(map[string]struct{}, len(clubIDs)+len(teamIDs))
	subjects := make([]standings.SubjectRef, 0, len(clubIDs)+len(teamIDs))

	for clubID := range clubIDs {
		c, ok, err := s.clubRepo.GetByID(ctx, clubID)
		if err != nil {
			return nil, MarkTransient(fmt.Errorf("get club %s: %w", clubID, err))
		}
		if !ok || c.Validate() != nil {
			// Partial standings beat none: skip the broken reference.
			s.logger.WarnContext(ctx, "skipping club with missing identity",
				"league_id", leagueID, "season", season, "club_id", clubID)
			continue
		}
		ref := standings.SubjectRef{Kind: standings.SubjectClub, ID: c.ID, Name: c.Name}
		if _, dup := seen[ref.Key()]; dup {
			continue
		}
		seen[ref.Key()] = struct{}{}
		subjects = append(subjects, ref)
	}

	for teamID := range teamIDs {
		t, ok, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return nil, MarkTransient(fmt.Errorf("get team %s: %w", teamID, err))
		}
		if !ok || t.Validate() != nil {
			s.logger.WarnContext(ctx, "skipping team with missing identity",
				"league_id", leagueID, "season", season, "team_id", teamID)
			continue
		}
		ref := standings.SubjectRef{Kind: standings.SubjectTeam, ID: t.ID, Name: t.Name}
		if _, dup := seen[ref.Key()]; dup {
			continue
		}
		seen[ref.Key()] = struct{}{}
		subjects = append(subjects, ref)
	}

	// Deterministic order for downstream processing; ranking happens later.
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Name != subjects[j].Name {
			return subjects[i].Name < subjects[j].Name
		}
		return subjects[i].Key() < subjects[j].Key()
	})

	return subjects, nil
}
