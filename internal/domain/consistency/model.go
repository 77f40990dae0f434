package consistency

import "time"

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Code string

const (
	CodeDualRepresentation Code = "dual_representation"
	CodeOrphanedEntry      Code = "orphaned_entry"
	CodeDuplicateSubject   Code = "duplicate_subject"
	CodeSelfPlay           Code = "self_play"
	CodeMissingIdentity    Code = "missing_identity"
)

// Finding is one detected inconsistency in a league+season's data.
type Finding struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	MatchID  string   `json:"match_id,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Message  string   `json:"message"`
}

// Report is the validator output for one league+season. Errors block a table
// write; warnings are informational for the operator dashboard.
type Report struct {
	LeagueID  string    `json:"league_id"`
	Season    string    `json:"season"`
	Errors    []Finding `json:"errors"`
	Warnings  []Finding `json:"warnings"`
	CheckedAt time.Time `json:"checked_at"`
}

func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}
