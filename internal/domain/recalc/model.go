package recalc

import "time"

type Trigger string

const (
	TriggerEvent Trigger = "event"
	TriggerForce Trigger = "force"
	TriggerRetry Trigger = "retry"
)

type RunStatus string

const (
	StatusPending RunStatus = "pending"
	StatusRunning RunStatus = "running"
	StatusDone    RunStatus = "done"
	StatusFailed  RunStatus = "failed"
)

// JobRun is the audit record of one recalculation run for a league+season.
// The latest done run backs the operator "last successful calculation" view.
type JobRun struct {
	RunID      string
	LeagueID   string
	Season     string
	Trigger    Trigger
	Status     RunStatus
	Attempt    int
	LastError  string
	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	DurationMs int64
	TraceID    string
	SpanID     string
}
