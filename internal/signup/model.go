package signup

import "time"

// Signup is one member's registration for one event. The composite key makes
// double signup a no-op at the schema level too.
type Signup struct {
	EventID    string    `json:"event_id" gorm:"primaryKey;type:varchar(64)"`
	MemberID   string    `json:"member_istid" gorm:"primaryKey;column:member_id;type:varchar(16)"`
	SignedUpAt time.Time `json:"signed_up_at" gorm:"autoCreateTime"`
}

func (Signup) TableName() string {
	return "activity_signups"
}

// Row is a signup joined with the member's directory entry, for admin
// listings and exports.
type Row struct {
	MemberID   string    `json:"member_istid"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	SignedUpAt time.Time `json:"signed_up_at"`
}
