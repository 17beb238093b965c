package member

import "time"

// Member is one organization member. ISTID is the institutional username and
// the primary key everywhere (signups, calendar mirrors, JWT subject).
type Member struct {
	ISTID            string    `json:"istid" gorm:"primaryKey;column:istid;type:varchar(16)"`
	Name             string    `json:"name" gorm:"not null"`
	Email            string    `json:"email" gorm:"uniqueIndex;not null"`
	AlternativeEmail string    `json:"alternative_email"`
	PasswordHash     string    `json:"-" gorm:"not null"`
	IsAdmin          bool      `json:"is_admin" gorm:"default:false"`
	Active           bool      `json:"active" gorm:"default:true"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

// Emails returns the addresses that identify this member on an event's
// attendee list, primary first.
func (m *Member) Emails() []string {
	emails := []string{m.Email}
	if m.AlternativeEmail != "" {
		emails = append(emails, m.AlternativeEmail)
	}
	return emails
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateMemberRequest struct {
	ISTID    string `json:"istid" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	IsAdmin  bool   `json:"is_admin"`
}

type UpdateAlternativeEmailRequest struct {
	AlternativeEmail string `json:"alternative_email" binding:"omitempty,email"`
}
