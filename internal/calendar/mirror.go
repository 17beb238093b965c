package calendar

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/neiist-dev/activities-backend/config"
	"github.com/neiist-dev/activities-backend/internal/activity"
	"github.com/neiist-dev/activities-backend/internal/member"
)

// meetingType is the event type whose visibility is restricted to listed
// attendees.
const meetingType = "Meeting"

// Mirror maintains one Google calendar per member, owned by the service
// account and shared read-only.
type Mirror struct {
	API API
	Cfg *config.Config

	// calendarIDs caches istid -> calendar id so steady-state passes skip the
	// calendar list call.
	calendarIDs *gocache.Cache
}

func NewMirror(api API, cfg *config.Config) *Mirror {
	return &Mirror{
		API:         api,
		Cfg:         cfg,
		calendarIDs: gocache.New(12*time.Hour, 30*time.Minute),
	}
}

// callCtx bounds one calendar API call. A stalled call becomes a per-member
// failure for the pass instead of wedging its worker.
func (mr *Mirror) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := mr.Cfg.ExternalCallLimit
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// DescriptionTag is the marker written into a mirror calendar's description
// and matched by substring during discovery.
func DescriptionTag(istid string) string {
	return "istid:" + istid
}

// ExternalEventID derives the deterministic mirror event id from a store
// event id: non-alphanumerics stripped, lowercased, truncated to 64. Distinct
// store ids can collide after stripping; the id stays derivable from the
// store row alone, which is what keeps pushes idempotent.
func ExternalEventID(storeID string) string {
	var b strings.Builder
	for _, r := range storeID {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	id := b.String()
	if len(id) > 64 {
		id = id[:64]
	}
	return id
}

// IncludedForMember reports whether an event belongs on a member's mirror.
// Everything is visible except meetings, which require the member's primary
// or alternative email on the attendee list.
func IncludedForMember(event activity.Event, m *member.Member) bool {
	if event.Type != meetingType {
		return true
	}
	attendees := event.AttendeeList()
	for _, email := range m.Emails() {
		for _, attendee := range attendees {
			if strings.EqualFold(attendee, email) {
				return true
			}
		}
	}
	return false
}

// EnsureCalendar finds the member's mirror by description tag, creating it on
// first sight. Read grants are reconciled separately by ensureACL so a pass
// that died between create and share heals on the next one.
func (mr *Mirror) EnsureCalendar(ctx context.Context, m *member.Member) (string, error) {
	if v, ok := mr.calendarIDs.Get(m.ISTID); ok {
		return v.(string), nil
	}

	tag := DescriptionTag(m.ISTID)
	listCtx, cancel := mr.callCtx(ctx)
	entries, err := mr.API.ListCalendars(listCtx)
	cancel()
	if err != nil {
		return "", fmt.Errorf("list calendars: %w", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Description, tag) {
			mr.calendarIDs.Set(m.ISTID, entry.Id, gocache.DefaultExpiration)
			return entry.Id, nil
		}
	}

	createCtx, cancel := mr.callCtx(ctx)
	created, err := mr.API.CreateCalendar(createCtx, &gcal.Calendar{
		Summary:     fmt.Sprintf("%s - %s", mr.Cfg.CalendarSummaryPrefix, m.Name),
		Description: tag,
		TimeZone:    mr.Cfg.CalendarTimezone,
	})
	cancel()
	if err != nil {
		return "", fmt.Errorf("create calendar: %w", err)
	}

	log.Printf("✅ Provisioned mirror calendar for %s", m.ISTID)
	mr.calendarIDs.Set(m.ISTID, created.Id, gocache.DefaultExpiration)
	return created.Id, nil
}

// ensureACL reconciles the mirror's read grants: the primary address always,
// the alternative when set. ACL insertion is not idempotent on the Google
// side, so existing grants are checked first.
func (mr *Mirror) ensureACL(ctx context.Context, calendarID string, m *member.Member) error {
	listCtx, cancel := mr.callCtx(ctx)
	rules, err := mr.API.ListACL(listCtx, calendarID)
	cancel()
	if err != nil {
		return fmt.Errorf("list acl: %w", err)
	}

	granted := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if rule.Scope != nil {
			granted[strings.ToLower(rule.Scope.Value)] = true
		}
	}

	for _, email := range m.Emails() {
		if granted[strings.ToLower(email)] {
			continue
		}
		insertCtx, cancel := mr.callCtx(ctx)
		err := mr.API.InsertACL(insertCtx, calendarID, &gcal.AclRule{
			Role:  "reader",
			Scope: &gcal.AclRuleScope{Type: "user", Value: email},
		})
		cancel()
		if err != nil {
			return fmt.Errorf("share calendar with %s: %w", email, err)
		}
	}
	return nil
}

// buildMirrorEvent renders a store event for the calendar API. All-day events
// use date boundaries (exclusive end), timed events RFC3339 instants.
func buildMirrorEvent(e activity.Event, timezone string) *gcal.Event {
	out := &gcal.Event{
		Id:      ExternalEventID(e.ID),
		Summary: e.Title,
	}

	description := e.Description
	if e.Properties != nil && e.Properties.DescriptionOverride != "" {
		description = e.Properties.DescriptionOverride
	}
	if e.URL != "" {
		if description != "" {
			description += "\n\n"
		}
		description += e.URL
	}
	out.Description = description

	if locations := e.LocationList(); len(locations) > 0 {
		out.Location = strings.Join(locations, ", ")
	}

	if e.AllDay {
		out.Start = &gcal.EventDateTime{Date: e.StartsAt.Format("2006-01-02")}
		out.End = &gcal.EventDateTime{Date: e.EndsAt.Format("2006-01-02")}
	} else {
		out.Start = &gcal.EventDateTime{DateTime: e.StartsAt.Format(time.RFC3339), TimeZone: timezone}
		out.End = &gcal.EventDateTime{DateTime: e.EndsAt.Format(time.RFC3339), TimeZone: timezone}
	}

	return out
}

// SyncMemberCalendar brings one member's mirror in line with the store: the
// calendar is provisioned if missing, read grants are reconciled, included
// events are pushed, everything else on the mirror is retracted. Pushing the
// same store state twice is a no-op on the Google side. Every API call is
// individually bounded by the configured external call timeout.
func (mr *Mirror) SyncMemberCalendar(ctx context.Context, m *member.Member, events []activity.Event) error {
	calendarID, err := mr.EnsureCalendar(ctx, m)
	if err != nil {
		return err
	}

	if err := mr.ensureACL(ctx, calendarID, m); err != nil {
		return err
	}

	desired := make(map[string]*gcal.Event)
	for _, event := range events {
		if !IncludedForMember(event, m) {
			continue
		}
		mirrored := buildMirrorEvent(event, mr.Cfg.CalendarTimezone)
		desired[mirrored.Id] = mirrored
	}

	for id, event := range desired {
		updateCtx, cancel := mr.callCtx(ctx)
		err := mr.API.UpdateEvent(updateCtx, calendarID, id, event)
		cancel()
		if isStatus(err, http.StatusNotFound) {
			insertCtx, cancel := mr.callCtx(ctx)
			err = mr.API.InsertEvent(insertCtx, calendarID, event)
			cancel()
		}
		if err != nil {
			return fmt.Errorf("push event %s: %w", id, err)
		}
	}

	listCtx, cancel := mr.callCtx(ctx)
	existing, err := mr.API.ListEventIDs(listCtx, calendarID)
	cancel()
	if err != nil {
		return fmt.Errorf("list mirror events: %w", err)
	}
	for _, id := range existing {
		if _, keep := desired[id]; keep {
			continue
		}
		deleteCtx, cancel := mr.callCtx(ctx)
		err := mr.API.DeleteEvent(deleteCtx, calendarID, id)
		cancel()
		if err != nil && !isStatus(err, http.StatusNotFound, http.StatusGone) {
			return fmt.Errorf("retract event %s: %w", id, err)
		}
	}

	return nil
}
