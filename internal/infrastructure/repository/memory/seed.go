package memory

import (
	"time"

	"github.com/clubcms/standings-engine/internal/domain/club"
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/team"
)

// Seed data for local development without a database: one league mid-way
// through the club migration, with one legacy team still unmapped.

func SeedClubs() []club.Club {
	return []club.Club{
		{
			ID:        "club-adler",
			Name:      "SV Adler",
			ShortName: "ADL",
			LegacySlots: []club.LegacySlot{
				{TeamID: "team-adler-1", Slot: "first"},
			},
		},
		{
			ID:        "club-falke",
			Name:      "FC Falke",
			ShortName: "FAL",
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "team-adler-1", Name: "SV Adler I", Slot: "first"},
		{ID: "team-bussard", Name: "TSV Bussard", Slot: "first"},
	}
}

func SeedMatches() []match.Match {
	score := func(h, a int) (*int, *int) { return &h, &a }

	h1, a1 := score(3, 1)
	h2, a2 := score(0, 0)
	return []match.Match{
		{
			ID:         "m-1",
			LeagueID:   "kreisliga-a",
			Season:     "2025-26",
			Matchday:   1,
			Status:     match.StatusFinished,
			HomeClubID: "club-adler",
			AwayClubID: "club-falke",
			HomeGoals:  h1,
			AwayGoals:  a1,
			UpdatedAt:  time.Now().UTC(),
		},
		{
			ID:         "m-2",
			LeagueID:   "kreisliga-a",
			Season:     "2025-26",
			Matchday:   2,
			Status:     match.StatusFinished,
			HomeClubID: "club-falke",
			AwayTeamID: "team-bussard",
			HomeTeamID: "team-falke-legacy",
			HomeGoals:  h2,
			AwayGoals:  a2,
			UpdatedAt:  time.Now().UTC(),
		},
		{
			ID:         "m-3",
			LeagueID:   "kreisliga-a",
			Season:     "2025-26",
			Matchday:   3,
			Status:     match.StatusPlanned,
			HomeTeamID: "team-bussard",
			AwayClubID: "club-adler",
		},
	}
}
