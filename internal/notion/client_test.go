package notion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dstotijn/go-notion"
)

type fakeQuerier struct {
	pages     [][]notion.Page
	calls     int
	err       error
	gotCursor []string
}

func (f *fakeQuerier) QueryDatabase(_ context.Context, _ string, query *notion.DatabaseQuery) (notion.DatabaseQueryResponse, error) {
	f.gotCursor = append(f.gotCursor, query.StartCursor)
	if f.err != nil {
		return notion.DatabaseQueryResponse{}, f.err
	}

	batch := f.pages[f.calls]
	f.calls++

	resp := notion.DatabaseQueryResponse{Results: batch}
	if f.calls < len(f.pages) {
		cursor := "cursor-" + batch[len(batch)-1].ID
		resp.HasMore = true
		resp.NextCursor = &cursor
	}
	return resp, nil
}

func newTestClient(q databaseQuerier) *Client {
	return &Client{api: q, databaseID: "db", callTimeout: time.Second}
}

func pageWithTitle(id, title string) notion.Page {
	return notion.Page{
		ID:             id,
		LastEditedTime: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		Properties: notion.DatabasePageProperties{
			"Name": {Title: []notion.RichText{{PlainText: title}}},
		},
	}
}

func TestFetchAllEventsPaginates(t *testing.T) {
	q := &fakeQuerier{pages: [][]notion.Page{
		{pageWithTitle("p1", "First"), pageWithTitle("p2", "Second")},
		{pageWithTitle("p3", "Third")},
	}}

	events, err := newTestClient(q).FetchAllEvents(context.Background())
	if err != nil {
		t.Fatalf("FetchAllEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if q.calls != 2 {
		t.Errorf("calls = %d, want 2", q.calls)
	}
	if q.gotCursor[0] != "" || q.gotCursor[1] != "cursor-p2" {
		t.Errorf("cursors = %v", q.gotCursor)
	}
	if events[2].Title != "Third" {
		t.Errorf("events[2].Title = %q", events[2].Title)
	}
}

func TestFetchAllEventsPropagatesError(t *testing.T) {
	q := &fakeQuerier{err: errors.New("upstream down")}
	if _, err := newTestClient(q).FetchAllEvents(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPageToSourceEventFullMapping(t *testing.T) {
	public := false
	end := notion.NewDateTime(time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC), true)
	page := notion.Page{
		ID:             "p1",
		URL:            "https://notion.so/p1",
		LastEditedTime: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		Properties: notion.DatabasePageProperties{
			"Name": {Title: []notion.RichText{{PlainText: "Game"}, {PlainText: "Jam"}}},
			"Date": {Date: &notion.Date{
				Start: notion.NewDateTime(time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC), true),
				End:   &end,
			}},
			"Location": {MultiSelect: []notion.SelectOptions{{Name: "Alameda"}, {Name: "Room 1.17"}}},
			"Type":     {Select: &notion.SelectOptions{Name: "Meeting"}},
			"Teams":    {MultiSelect: []notion.SelectOptions{{Name: "DEV"}}},
			"Attendees": {People: []notion.User{
				{Person: &notion.Person{Email: "a@example.org"}},
				{Person: &notion.Person{}}, // no email, dropped
			}},
			"Public": {Checkbox: &public},
		},
	}

	ev := PageToSourceEvent(page)

	if ev.ID != "p1" || ev.URL != "https://notion.so/p1" {
		t.Errorf("ID/URL = %q/%q", ev.ID, ev.URL)
	}
	if ev.Title != "GameJam" {
		t.Errorf("Title = %q, want rich text concatenated", ev.Title)
	}
	if ev.Start != "2026-03-14T18:30:00Z" || ev.End != "2026-03-14T21:00:00Z" {
		t.Errorf("Start/End = %q/%q", ev.Start, ev.End)
	}
	if len(ev.Location) != 2 || ev.Location[1] != "Room 1.17" {
		t.Errorf("Location = %v", ev.Location)
	}
	if ev.Type != "Meeting" || len(ev.Teams) != 1 {
		t.Errorf("Type/Teams = %q/%v", ev.Type, ev.Teams)
	}
	if len(ev.Attendees) != 1 || ev.Attendees[0] != "a@example.org" {
		t.Errorf("Attendees = %v", ev.Attendees)
	}
	if ev.Public {
		t.Error("Public = true, want checkbox value")
	}
	if !ev.LastEdited.Equal(page.LastEditedTime) {
		t.Errorf("LastEdited = %v", ev.LastEdited)
	}
}

func TestPageToSourceEventDefaults(t *testing.T) {
	ev := PageToSourceEvent(notion.Page{ID: "p1"})

	if ev.Title != "Untitled Event" {
		t.Errorf("Title = %q, want default", ev.Title)
	}
	if !ev.Public {
		t.Error("Public = false, want default true")
	}
	if ev.Start != "" || ev.End != "" {
		t.Errorf("Start/End = %q/%q, want empty", ev.Start, ev.End)
	}
}

// A marker without a clock component must stay a bare calendar date, that is
// what downstream all-day detection keys on.
func TestPageToSourceEventKeepsDateGranularity(t *testing.T) {
	page := notion.Page{
		ID: "p1",
		Properties: notion.DatabasePageProperties{
			"Date": {Date: &notion.Date{
				Start: notion.NewDateTime(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), false),
			}},
		},
	}

	ev := PageToSourceEvent(page)
	if ev.Start != "2026-03-14" {
		t.Errorf("Start = %q, want bare date", ev.Start)
	}
}
