package activity

import (
	"log"

	"github.com/neiist-dev/activities-backend/internal/notion"
)

// Plan is the outcome of comparing a fresh source fetch against the store
// snapshot. Upserts carry canonical fields only; properties and signups are
// owned locally and never appear here.
type Plan struct {
	Upserts   []Event
	DeleteIDs []string
	Unchanged int
	Skipped   int
}

// Empty reports whether re-applying the plan would touch the store.
func (p Plan) Empty() bool {
	return len(p.Upserts) == 0 && len(p.DeleteIDs) == 0
}

// BuildPlan computes the reconciliation plan. The rules, in order:
//   - non-public source events that exist in the store are deleted;
//   - public source events whose dates do not normalize are skipped, which
//     leaves any stale store row on the delete path below;
//   - a public event is upserted when the store has no row for it or the
//     store row's timestamp is strictly older than the source's;
//   - whatever store ids the source pass never claimed are deleted. This is
//     how removed or unpublished upstream events are retracted.
//
// Running the same inputs through twice yields an empty plan.
func BuildPlan(source []notion.SourceEvent, snapshot []Event) Plan {
	remaining := make(map[string]Event, len(snapshot))
	for _, stored := range snapshot {
		remaining[stored.ID] = stored
	}

	var plan Plan

	for _, src := range source {
		if !src.Public {
			if _, exists := remaining[src.ID]; exists {
				plan.DeleteIDs = append(plan.DeleteIDs, src.ID)
				delete(remaining, src.ID)
			}
			continue
		}

		interval, err := NormalizeDates(src.Start, src.End)
		if err != nil {
			log.Printf("⚠️ Skipping event %s (%q): %v", src.ID, src.Title, err)
			plan.Skipped++
			continue
		}

		stored, exists := remaining[src.ID]
		delete(remaining, src.ID)

		if exists && !stored.LastEditedTime.Before(src.LastEdited) {
			plan.Unchanged++
			continue
		}

		plan.Upserts = append(plan.Upserts, Event{
			ID:             src.ID,
			Title:          src.Title,
			Description:    "",
			URL:            src.URL,
			Location:       encodeList(src.Location),
			Type:           src.Type,
			Teams:          encodeList(src.Teams),
			Attendees:      encodeList(src.Attendees),
			StartsAt:       interval.Start,
			EndsAt:         interval.End,
			AllDay:         interval.AllDay,
			LastEditedTime: src.LastEdited,
		})
	}

	for id := range remaining {
		plan.DeleteIDs = append(plan.DeleteIDs, id)
	}

	return plan
}
