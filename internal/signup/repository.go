package signup

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/neiist-dev/activities-backend/internal/activity"
)

// signupTx is the locked, transaction-scoped view a signup change runs
// against. The production implementation is a GORM transaction holding the
// properties row FOR UPDATE for its whole lifetime.
type signupTx interface {
	EventExists(eventID string) error
	LockProperties(eventID string) (*activity.Properties, error)
	CountSignups(eventID string) (int, error)
	HasSignup(eventID, memberID string) (bool, error)
	CreateSignup(s *Signup) error
	DeleteSignup(eventID, memberID string) error
}

// applyInTx runs one signup state change against an already-serialized view:
// read the locked properties, count occupancy, decide, act. Callers own the
// transaction boundary.
func applyInTx(tx signupTx, eventID, memberID string, decide func(props *activity.Properties, count int, already bool) (Decision, error)) (Decision, error) {
	if err := tx.EventExists(eventID); err != nil {
		return DecisionNoop, err
	}

	props, err := tx.LockProperties(eventID)
	if err != nil {
		return DecisionNoop, err
	}

	count, err := tx.CountSignups(eventID)
	if err != nil {
		return DecisionNoop, err
	}

	already, err := tx.HasSignup(eventID, memberID)
	if err != nil {
		return DecisionNoop, err
	}

	decision, err := decide(props, count, already)
	if err != nil {
		return DecisionNoop, err
	}

	switch decision {
	case DecisionCreate:
		err = tx.CreateSignup(&Signup{EventID: eventID, MemberID: memberID})
	case DecisionDelete:
		err = tx.DeleteSignup(eventID, memberID)
	}
	if err != nil {
		return DecisionNoop, err
	}
	return decision, nil
}

type gormSignupTx struct {
	tx *gorm.DB
}

func (g gormSignupTx) EventExists(eventID string) error {
	var event activity.Event
	return g.tx.First(&event, "id = ?", eventID).Error
}

// LockProperties takes the row lock concurrent signups serialize on. A nil
// result (no error) means the event was never customized; signups are closed
// then and no lock is needed.
func (g gormSignupTx) LockProperties(eventID string) (*activity.Properties, error) {
	var props activity.Properties
	err := g.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&props, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &props, nil
}

func (g gormSignupTx) CountSignups(eventID string) (int, error) {
	var count int64
	err := g.tx.Model(&Signup{}).Where("event_id = ?", eventID).Count(&count).Error
	return int(count), err
}

func (g gormSignupTx) HasSignup(eventID, memberID string) (bool, error) {
	var existing Signup
	err := g.tx.First(&existing, "event_id = ? AND member_id = ?", eventID, memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (g gormSignupTx) CreateSignup(s *Signup) error {
	return g.tx.Create(s).Error
}

func (g gormSignupTx) DeleteSignup(eventID, memberID string) error {
	return g.tx.Where("event_id = ? AND member_id = ?", eventID, memberID).
		Delete(&Signup{}).Error
}

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Apply runs one signup state change inside a transaction. The event's
// properties row is locked FOR UPDATE so concurrent signups against the last
// capacity slot serialize; the decide callback then sees a consistent
// (properties, count, already-signed-up) view.
func (r *Repository) Apply(eventID, memberID string, decide func(props *activity.Properties, count int, already bool) (Decision, error)) (Decision, error) {
	var applied Decision

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		decision, err := applyInTx(gormSignupTx{tx: tx}, eventID, memberID, decide)
		if err != nil {
			return err
		}
		applied = decision
		return nil
	})

	return applied, err
}

// ListForEvent returns an event's signups joined with member names and
// emails, oldest first.
func (r *Repository) ListForEvent(eventID string) ([]Row, error) {
	var rows []Row
	err := r.DB.Table("activity_signups AS s").
		Select("s.member_id, m.name, m.email, s.signed_up_at").
		Joins("JOIN members m ON m.istid = s.member_id").
		Where("s.event_id = ?", eventID).
		Order("s.signed_up_at ASC").
		Scan(&rows).Error
	return rows, err
}

// ListEventIDsForMember returns the ids of events the member is signed up to.
func (r *Repository) ListEventIDsForMember(memberID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&Signup{}).
		Where("member_id = ?", memberID).
		Pluck("event_id", &ids).Error
	return ids, err
}
