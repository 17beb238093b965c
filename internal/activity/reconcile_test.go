package activity

import (
	"sort"
	"testing"
	"time"

	"github.com/neiist-dev/activities-backend/internal/notion"
)

var (
	older = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	newer = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
)

func sourceEvent(id string, edited time.Time) notion.SourceEvent {
	return notion.SourceEvent{
		ID:         id,
		Title:      "Workshop",
		Start:      "2026-03-14T18:30:00Z",
		End:        "2026-03-14T21:00:00Z",
		LastEdited: edited,
		Public:     true,
	}
}

func storedEvent(id string, edited time.Time) Event {
	return Event{
		ID:             id,
		Title:          "Workshop",
		StartsAt:       time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		EndsAt:         time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC),
		LastEditedTime: edited,
	}
}

func TestBuildPlanNewEventUpserted(t *testing.T) {
	plan := BuildPlan([]notion.SourceEvent{sourceEvent("ev1", newer)}, nil)

	if len(plan.Upserts) != 1 || plan.Upserts[0].ID != "ev1" {
		t.Fatalf("Upserts = %+v, want single ev1", plan.Upserts)
	}
	if len(plan.DeleteIDs) != 0 || plan.Unchanged != 0 || plan.Skipped != 0 {
		t.Errorf("unexpected plan counters: %+v", plan)
	}
}

func TestBuildPlanStoreRowNotOlderIsUnchanged(t *testing.T) {
	for _, storeEdited := range []time.Time{newer, newer.Add(time.Hour)} {
		plan := BuildPlan(
			[]notion.SourceEvent{sourceEvent("ev1", newer)},
			[]Event{storedEvent("ev1", storeEdited)},
		)
		if !plan.Empty() || plan.Unchanged != 1 {
			t.Errorf("store edited %v: plan = %+v, want empty with 1 unchanged", storeEdited, plan)
		}
	}
}

func TestBuildPlanStrictlyOlderRowUpdated(t *testing.T) {
	plan := BuildPlan(
		[]notion.SourceEvent{sourceEvent("ev1", newer)},
		[]Event{storedEvent("ev1", older)},
	)

	if len(plan.Upserts) != 1 {
		t.Fatalf("Upserts = %+v, want one", plan.Upserts)
	}
	if !plan.Upserts[0].LastEditedTime.Equal(newer) {
		t.Errorf("LastEditedTime = %v, want %v", plan.Upserts[0].LastEditedTime, newer)
	}
}

func TestBuildPlanNonPublicDeleted(t *testing.T) {
	src := sourceEvent("ev1", newer)
	src.Public = false

	plan := BuildPlan([]notion.SourceEvent{src}, []Event{storedEvent("ev1", older)})

	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != "ev1" {
		t.Fatalf("DeleteIDs = %v, want [ev1]", plan.DeleteIDs)
	}
	if len(plan.Upserts) != 0 {
		t.Errorf("Upserts = %+v, want none", plan.Upserts)
	}
}

func TestBuildPlanNonPublicNeverStoredIsNoop(t *testing.T) {
	src := sourceEvent("ev1", newer)
	src.Public = false

	plan := BuildPlan([]notion.SourceEvent{src}, nil)
	if !plan.Empty() {
		t.Fatalf("plan = %+v, want empty", plan)
	}
}

func TestBuildPlanVanishedSourceRowsDeleted(t *testing.T) {
	plan := BuildPlan(
		[]notion.SourceEvent{sourceEvent("ev1", newer)},
		[]Event{storedEvent("ev1", newer), storedEvent("ev2", older), storedEvent("ev3", older)},
	)

	sort.Strings(plan.DeleteIDs)
	if len(plan.DeleteIDs) != 2 || plan.DeleteIDs[0] != "ev2" || plan.DeleteIDs[1] != "ev3" {
		t.Fatalf("DeleteIDs = %v, want [ev2 ev3]", plan.DeleteIDs)
	}
}

func TestBuildPlanBadDatesSkippedNotFatal(t *testing.T) {
	bad := sourceEvent("ev1", newer)
	bad.Start = "2026-03-14"
	bad.End = "2026-03-14T21:00:00Z"

	plan := BuildPlan([]notion.SourceEvent{bad, sourceEvent("ev2", newer)}, nil)

	if plan.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", plan.Skipped)
	}
	if len(plan.Upserts) != 1 || plan.Upserts[0].ID != "ev2" {
		t.Errorf("Upserts = %+v, want only ev2", plan.Upserts)
	}
}

// A skipped event's stale store row falls onto the delete path, so the store
// never keeps data the source can no longer express.
func TestBuildPlanSkippedEventStaleRowDeleted(t *testing.T) {
	bad := sourceEvent("ev1", newer)
	bad.End = "2026-03-16"

	plan := BuildPlan([]notion.SourceEvent{bad}, []Event{storedEvent("ev1", older)})

	if plan.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", plan.Skipped)
	}
	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != "ev1" {
		t.Errorf("DeleteIDs = %v, want [ev1]", plan.DeleteIDs)
	}
}

// Applying a plan and rebuilding against the result must yield an empty plan.
func TestBuildPlanIdempotent(t *testing.T) {
	source := []notion.SourceEvent{
		sourceEvent("ev1", newer),
		sourceEvent("ev2", older),
	}

	first := BuildPlan(source, nil)
	if len(first.Upserts) != 2 {
		t.Fatalf("first pass Upserts = %d, want 2", len(first.Upserts))
	}

	second := BuildPlan(source, first.Upserts)
	if !second.Empty() {
		t.Fatalf("second pass = %+v, want empty", second)
	}
	if second.Unchanged != 2 {
		t.Errorf("second pass Unchanged = %d, want 2", second.Unchanged)
	}
}

func TestBuildPlanCanonicalFieldsMapped(t *testing.T) {
	src := sourceEvent("ev1", newer)
	src.Location = []string{"Alameda", "Room 1.17"}
	src.Teams = []string{"DEV"}
	src.Attendees = []string{"a@example.org"}
	src.Type = "Meeting"
	src.URL = "https://notion.so/ev1"

	plan := BuildPlan([]notion.SourceEvent{src}, nil)
	if len(plan.Upserts) != 1 {
		t.Fatalf("Upserts = %d, want 1", len(plan.Upserts))
	}

	got := plan.Upserts[0]
	if got.Type != "Meeting" || got.URL != "https://notion.so/ev1" {
		t.Errorf("Type/URL = %q/%q", got.Type, got.URL)
	}
	if locations := got.LocationList(); len(locations) != 2 || locations[1] != "Room 1.17" {
		t.Errorf("LocationList = %v", locations)
	}
	if attendees := got.AttendeeList(); len(attendees) != 1 || attendees[0] != "a@example.org" {
		t.Errorf("AttendeeList = %v", attendees)
	}
	if got.AllDay {
		t.Error("AllDay = true for timestamped event")
	}
}
