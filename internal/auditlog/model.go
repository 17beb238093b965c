package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records admin actions, signup changes and per-item sync failures
// for operator visibility.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID   *string        `gorm:"type:varchar(16);index" json:"actor_id"` // nullable: scheduled jobs have no actor
	EventID   *string        `gorm:"type:varchar(64);index" json:"event_id"` // nullable: member-level failures
	Action    string         `gorm:"size:100;not null;index" json:"action"`
	Details   datatypes.JSON `json:"details"`
	IPAddress string         `gorm:"size:45" json:"ip_address"`
	Status    string         `gorm:"size:20;not null;index" json:"status"` // success/failure
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Actions recorded by this system.
const (
	ActionPropertiesUpdated = "ACTIVITY_PROPERTIES_UPDATED"
	ActionSignupChanged     = "ACTIVITY_SIGNUP_CHANGED"
	ActionSyncTriggered     = "SYNC_TRIGGERED"
	ActionMirrorSyncFailed  = "MIRROR_SYNC_FAILED"
	ActionEventSkipped      = "SOURCE_EVENT_SKIPPED"
	ActionLogin             = "MEMBER_LOGIN"
)

// Filter narrows audit log queries.
type Filter struct {
	ActorID string
	EventID string
	Action  string
	Status  string
	Page    int
	Limit   int
}
