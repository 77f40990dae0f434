package match

import (
	"strings"
	"time"
)

const (
	StatusPlanned   = "planned"
	StatusLive      = "live"
	StatusFinished  = "finished"
	StatusCancelled = "cancelled"
)

// Match is one fixture between two participants. During the club migration a
// match may carry a legacy team pair, a club pair, or (inconsistently) both;
// the resolver decides which pair counts.
type Match struct {
	ID       string
	LeagueID string
	Season   string
	Matchday int
	Status   string

	HomeTeamID string
	AwayTeamID string
	HomeClubID string
	AwayClubID string

	HomeGoals *int
	AwayGoals *int

	UpdatedAt time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusPlanned
	}
	return status
}

func IsFinishedStatus(status string) bool {
	return NormalizeStatus(status) == StatusFinished
}

func IsCancelledStatus(status string) bool {
	return NormalizeStatus(status) == StatusCancelled
}

// HasClubPair reports whether both participants are identified by clubs.
func (m Match) HasClubPair() bool {
	return m.HomeClubID != "" && m.AwayClubID != ""
}

// HasTeamPair reports whether both participants are identified by legacy teams.
func (m Match) HasTeamPair() bool {
	return m.HomeTeamID != "" && m.AwayTeamID != ""
}

// HasScore reports whether a final score is recorded.
func (m Match) HasScore() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}
