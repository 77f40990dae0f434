package postgres

import "time"

type tableEntryModel struct {
	ID             int64      `db:"id"`
	LeagueID       string     `db:"league_id"`
	Season         string     `db:"season"`
	SubjectKind    string     `db:"subject_kind"`
	SubjectID      string     `db:"subject_id"`
	DisplayName    string     `db:"display_name"`
	Played         int        `db:"played"`
	Won            int        `db:"won"`
	Drawn          int        `db:"drawn"`
	Lost           int        `db:"lost"`
	GoalsFor       int        `db:"goals_for"`
	GoalsAgainst   int        `db:"goals_against"`
	GoalDifference int        `db:"goal_difference"`
	Points         int        `db:"points"`
	Rank           int        `db:"rank"`
	ComputedAt     time.Time  `db:"computed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type tableEntryInsertModel struct {
	LeagueID       string    `db:"league_id"`
	Season         string    `db:"season"`
	SubjectKind    string    `db:"subject_kind"`
	SubjectID      string    `db:"subject_id"`
	DisplayName    string    `db:"display_name"`
	Played         int       `db:"played"`
	Won            int       `db:"won"`
	Drawn          int       `db:"drawn"`
	Lost           int       `db:"lost"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	GoalDifference int       `db:"goal_difference"`
	Points         int       `db:"points"`
	Rank           int       `db:"rank"`
	ComputedAt     time.Time `db:"computed_at"`
}
