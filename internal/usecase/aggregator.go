package usecase

import (
	"github.com/clubcms/standings-engine/internal/domain/match"
	"github.com/clubcms/standings-engine/internal/domain/standings"
)

// SubjectStats are the accumulated results of one subject over the finished
// matches of a league+season.
type SubjectStats struct {
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

func (s SubjectStats) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}

// ComputeStats scans matches for the given subject and tallies results.
// Only finished matches with a recorded score count; a cancelled match is
// excluded entirely even when a score is present. The participants function
// yields the resolved home and away subject keys for a match ("" when a side
// cannot be resolved).
func ComputeStats(subject standings.SubjectRef, matches []match.Match, participants func(match.Match) (string, string)) SubjectStats {
	var stats SubjectStats
	key := subject.Key()

	for _, m := range matches {
		if !match.IsFinishedStatus(m.Status) || !m.HasScore() {
			continue
		}

		home, away := participants(m)
		if home == "" || away == "" || home == away {
			continue
		}

		var scored, conceded int
		switch key {
		case home:
			scored, conceded = *m.HomeGoals, *m.AwayGoals
		case away:
			scored, conceded = *m.AwayGoals, *m.HomeGoals
		default:
			continue
		}

		stats.Played++
		stats.GoalsFor += scored
		stats.GoalsAgainst += conceded
		switch {
		case scored > conceded:
			stats.Won++
			stats.Points += 3
		case scored == conceded:
			stats.Drawn++
			stats.Points++
		default:
			stats.Lost++
		}
	}

	return stats
}
