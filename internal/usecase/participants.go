package usecase

import (
	"github.com/clubcms/standings-engine/internal/domain/club"
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/standings"
)

// legacyMapping indexes the club registry by the legacy team IDs each club
// declares via its slots. A team present here is superseded by that club.
func legacyMapping(clubs []club.Club) map[string]club.Club {
	out := make(map[string]club.Club)
	for _, c := range clubs {
		for _, slot := range c.LegacySlots {
			if slot.TeamID == "" {
				continue
			}
			out[slot.TeamID] = c
		}
	}
	return out
}

// participantKeys resolves both sides of a match to subject keys. Club
// references win over team references; a superseded team is promoted to its
// club so both representations land on the same subject. An unresolvable
// side yields "".
func participantKeys(m match.Match, superseded map[string]club.Club) (home, away string) {
	return participantKey(m.HomeClubID, m.HomeTeamID, superseded),
		participantKey(m.AwayClubID, m.AwayTeamID, superseded)
}

func participantKey(clubID, teamID string, superseded map[string]club.Club) string {
	if clubID != "" {
		return string(standings.SubjectClub) + ":" + clubID
	}
	if teamID == "" {
		return ""
	}
	if c, ok := superseded[teamID]; ok {
		return string(standings.SubjectClub) + ":" + c.ID
	}
	return string(standings.SubjectTeam) + ":" + teamID
}

// subjectKeyFor maps an existing table entry's subject through the
// supersession rule, so a legacy team entry and its club entry compare equal.
func subjectKeyFor(subject standings.SubjectRef, superseded map[string]club.Club) string {
	if subject.Kind == standings.SubjectTeam {
		if c, ok := superseded[subject.ID]; ok {
			return string(standings.SubjectClub) + ":" + c.ID
		}
	}
	return subject.Key()
}
