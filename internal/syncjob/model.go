package syncjob

import "time"

// Run kinds.
const (
	KindContent   = "content"   // source -> store reconciliation
	KindCalendars = "calendars" // store -> member mirror propagation
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusPartial = "partial" // some members failed, the pass continued
	StatusFailure = "failure"
)

// SyncRun records one synchronization pass for operators: what kind, what it
// touched, how long it took and how it ended.
type SyncRun struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid"`
	Kind   string `json:"kind" gorm:"size:20;not null;index"`
	Status string `json:"status" gorm:"size:20;not null;index"`

	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`

	MembersSynced int `json:"members_synced"`
	MembersFailed int `json:"members_failed"`

	Error string `json:"error,omitempty" gorm:"type:text"`

	StartedAt  time.Time  `json:"started_at" gorm:"index"`
	FinishedAt *time.Time `json:"finished_at"`
	DurationMS int64      `json:"duration_ms"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
