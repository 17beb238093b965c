package activity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Event is one reconciled row of the internal store. The id is the content
// workspace's page id; LastEditedTime is the reconciler's sole conflict key
// and is only ever moved forward.
type Event struct {
	ID             string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	URL            string         `gorm:"type:text" json:"url"`
	Location       datatypes.JSON `json:"location"`
	Type           string         `gorm:"type:varchar(100)" json:"type"`
	Teams          datatypes.JSON `json:"teams"`
	Attendees      datatypes.JSON `json:"attendees"`
	StartsAt       time.Time      `gorm:"not null;index" json:"starts_at"`
	EndsAt         time.Time      `gorm:"not null" json:"ends_at"`
	AllDay         bool           `gorm:"not null" json:"all_day"`
	LastEditedTime time.Time      `gorm:"not null" json:"last_edited_time"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Properties  *Properties `gorm:"-" json:"properties,omitempty"`
	SignupCount int         `gorm:"-" json:"signup_count"`
}

func (Event) TableName() string {
	return "activity_events"
}

// LocationList decodes the jsonb location column.
func (e *Event) LocationList() []string { return decodeList(e.Location) }

// TeamList decodes the jsonb teams column.
func (e *Event) TeamList() []string { return decodeList(e.Teams) }

// AttendeeList decodes the jsonb attendees column.
func (e *Event) AttendeeList() []string { return decodeList(e.Attendees) }

func decodeList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func encodeList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

// Properties holds the admin-owned settings of one event. Created lazily on
// first edit, never written by the reconciler, deleted with its event.
type Properties struct {
	EventID             string     `gorm:"primaryKey;type:varchar(64)" json:"event_id"`
	SignupEnabled       bool       `gorm:"not null;default:false" json:"signup_enabled"`
	SignupDeadline      *time.Time `json:"signup_deadline,omitempty"`
	MaxAttendees        *int       `json:"max_attendees,omitempty"`
	CustomIcon          string     `gorm:"type:varchar(100)" json:"custom_icon,omitempty"`
	DescriptionOverride string     `gorm:"type:text" json:"description_override,omitempty"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Properties) TableName() string {
	return "activity_properties"
}

// UpdatePropertiesRequest - admin edit of one event's properties.
type UpdatePropertiesRequest struct {
	EventID             string     `json:"event_id" binding:"required"`
	SignupEnabled       bool       `json:"signup_enabled"`
	SignupDeadline      *time.Time `json:"signup_deadline"`
	MaxAttendees        *int       `json:"max_attendees"`
	CustomIcon          string     `json:"custom_icon"`
	DescriptionOverride string     `json:"description_override"`
}
