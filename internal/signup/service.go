package signup

import (
	"context"
	"errors"
	"time"

	"github.com/neiist-dev/activities-backend/internal/activity"
	"github.com/neiist-dev/activities-backend/internal/auditlog"
	"github.com/neiist-dev/activities-backend/utils"
)

var (
	ErrSignupClosed   = errors.New("signups are not open for this activity")
	ErrDeadlinePassed = errors.New("signup deadline has passed")
	ErrCapacityFull   = errors.New("activity is at capacity")
)

// Decision is the outcome of evaluating a requested signup state against the
// event's current properties and occupancy.
type Decision int

const (
	DecisionNoop Decision = iota
	DecisionCreate
	DecisionDelete
)

// evaluateSignup decides what a signup request does. Requests that match the
// current state are no-ops in both directions; cancellation is always allowed
// so members are never trapped in a full or closed event.
func evaluateSignup(props *activity.Properties, count int, already, want bool, now time.Time) (Decision, error) {
	if want == already {
		return DecisionNoop, nil
	}

	if !want {
		return DecisionDelete, nil
	}

	if props == nil || !props.SignupEnabled {
		return DecisionNoop, ErrSignupClosed
	}
	if props.SignupDeadline != nil && now.After(*props.SignupDeadline) {
		return DecisionNoop, ErrDeadlinePassed
	}
	if props.MaxAttendees != nil && count >= *props.MaxAttendees {
		return DecisionNoop, ErrCapacityFull
	}
	return DecisionCreate, nil
}

type Service struct {
	Repo     *Repository
	Activity *activity.Repository
	AuditSvc auditlog.Service
}

func NewService(repo *Repository, activityRepo *activity.Repository, auditSvc auditlog.Service) *Service {
	return &Service{Repo: repo, Activity: activityRepo, AuditSvc: auditSvc}
}

// SetSignup moves a member's signup state for an event to want. Returns
// whether anything changed.
func (s *Service) SetSignup(ctx context.Context, eventID, memberID string, want bool, ip string) (bool, error) {
	decision, err := s.Repo.Apply(eventID, memberID, func(props *activity.Properties, count int, already bool) (Decision, error) {
		return evaluateSignup(props, count, already, want, time.Now())
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &memberID, &eventID, auditlog.ActionSignupChanged,
			map[string]interface{}{"requested": want, "error": err.Error()}, ip, "failure")
		return false, err
	}

	if decision == DecisionNoop {
		return false, nil
	}

	activity.InvalidateListCache(ctx)

	action := "signed_up"
	if decision == DecisionDelete {
		action = "cancelled"
	}

	title := eventID
	if event, err := s.Activity.GetEventByID(eventID); err == nil {
		title = event.Title
	}

	utils.PublishSignupEvent(ctx, eventID, map[string]interface{}{
		"event_id":     eventID,
		"event_title":  title,
		"member_istid": memberID,
		"action":       action,
		"at":           time.Now().UTC(),
	})
	s.AuditSvc.LogAction(ctx, &memberID, &eventID, auditlog.ActionSignupChanged,
		map[string]interface{}{"action": action}, ip, "success")

	return true, nil
}

func (s *Service) ListForEvent(eventID string) ([]Row, error) {
	return s.Repo.ListForEvent(eventID)
}

// ListForMember returns the full events the member is signed up to.
func (s *Service) ListForMember(memberID string) ([]activity.Event, error) {
	ids, err := s.Repo.ListEventIDsForMember(memberID)
	if err != nil {
		return nil, err
	}

	events := make([]activity.Event, 0, len(ids))
	for _, id := range ids {
		event, err := s.Activity.GetEventByID(id)
		if err != nil {
			continue
		}
		events = append(events, *event)
	}
	return events, nil
}
