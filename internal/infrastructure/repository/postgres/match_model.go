package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID         string         `db:"id"`
	LeagueID   string         `db:"league_id"`
	Season     string         `db:"season"`
	Matchday   int            `db:"matchday"`
	Status     string         `db:"status"`
	HomeTeamID sql.NullString `db:"home_team_id"`
	AwayTeamID sql.NullString `db:"away_team_id"`
	HomeClubID sql.NullString `db:"home_club_id"`
	AwayClubID sql.NullString `db:"away_club_id"`
	HomeGoals  sql.NullInt64  `db:"home_goals"`
	AwayGoals  sql.NullInt64  `db:"away_goals"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	DeletedAt  *time.Time     `db:"deleted_at"`
}
