package calendar

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/neiist-dev/activities-backend/internal/activity"
	"github.com/neiist-dev/activities-backend/internal/member"
)

// BuildICSFeed renders a member's view of the store as an iCalendar document,
// for clients that subscribe by URL instead of using the Google mirror. The
// same visibility rules apply as on the mirror.
func BuildICSFeed(m *member.Member, events []activity.Event, calendarName string) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(calendarName)

	now := time.Now().UTC()
	for _, event := range events {
		if !IncludedForMember(event, m) {
			continue
		}

		entry := cal.AddEvent(ExternalEventID(event.ID))
		entry.SetDtStampTime(now)
		entry.SetSummary(event.Title)

		description := event.Description
		if event.Properties != nil && event.Properties.DescriptionOverride != "" {
			description = event.Properties.DescriptionOverride
		}
		if description != "" {
			entry.SetDescription(description)
		}
		if event.URL != "" {
			entry.SetURL(event.URL)
		}
		if locations := event.LocationList(); len(locations) > 0 {
			entry.SetLocation(strings.Join(locations, ", "))
		}

		if event.AllDay {
			entry.SetAllDayStartAt(event.StartsAt)
			entry.SetAllDayEndAt(event.EndsAt)
		} else {
			entry.SetStartAt(event.StartsAt)
			entry.SetEndAt(event.EndsAt)
		}
	}

	return cal.Serialize()
}
