package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/dstotijn/go-notion"
)

const dateOnlyLayout = "2006-01-02"

// SourceEvent is the canonical shape of one event row in the content workspace.
// Start/End keep the workspace's date granularity: "2006-01-02" for date-only
// markers, RFC3339 for timestamped ones, "" for a missing end.
type SourceEvent struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Start      string    `json:"start"`
	End        string    `json:"end,omitempty"`
	URL        string    `json:"url"`
	Location   []string  `json:"location"`
	Type       string    `json:"type,omitempty"`
	Teams      []string  `json:"teams"`
	Attendees  []string  `json:"attendees"`
	LastEdited time.Time `json:"last_edited_time"`
	Public     bool      `json:"public"`
}

type databaseQuerier interface {
	QueryDatabase(ctx context.Context, id string, query *notion.DatabaseQuery) (notion.DatabaseQueryResponse, error)
}

// Client pulls event definitions from the Notion workspace database.
type Client struct {
	api         databaseQuerier
	databaseID  string
	callTimeout time.Duration
}

func NewClient(apiKey, databaseID string, callTimeout time.Duration) *Client {
	return &Client{
		api:         notion.NewClient(apiKey),
		databaseID:  databaseID,
		callTimeout: callTimeout,
	}
}

// FetchAllEvents walks the paginated database query until the cursor is
// exhausted and maps every page into a SourceEvent.
func (c *Client) FetchAllEvents(ctx context.Context) ([]SourceEvent, error) {
	var events []SourceEvent
	var cursor string

	for {
		query := &notion.DatabaseQuery{PageSize: 100}
		if cursor != "" {
			query.StartCursor = cursor
		}

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		resp, err := c.api.QueryDatabase(callCtx, c.databaseID, query)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("notion query failed: %w", err)
		}

		for _, page := range resp.Results {
			events = append(events, PageToSourceEvent(page))
		}

		if !resp.HasMore || resp.NextCursor == nil {
			break
		}
		cursor = *resp.NextCursor
	}

	return events, nil
}

// PageToSourceEvent maps one workspace page to the canonical source shape.
// Optional properties default to empty values; events with no Public property
// count as public.
func PageToSourceEvent(page notion.Page) SourceEvent {
	ev := SourceEvent{
		ID:         page.ID,
		Title:      "Untitled Event",
		URL:        page.URL,
		Location:   []string{},
		Teams:      []string{},
		Attendees:  []string{},
		LastEdited: page.LastEditedTime,
		Public:     true,
	}

	props, ok := page.Properties.(notion.DatabasePageProperties)
	if !ok {
		return ev
	}

	if p, ok := props["Name"]; ok && len(p.Title) > 0 && richText(p.Title) != "" {
		ev.Title = richText(p.Title)
	}
	if p, ok := props["Date"]; ok && p.Date != nil {
		ev.Start = formatMarker(p.Date.Start)
		if p.Date.End != nil {
			ev.End = formatMarker(*p.Date.End)
		}
	}
	if p, ok := props["Location"]; ok {
		for _, opt := range p.MultiSelect {
			ev.Location = append(ev.Location, opt.Name)
		}
	}
	if p, ok := props["Type"]; ok && p.Select != nil {
		ev.Type = p.Select.Name
	}
	if p, ok := props["Teams"]; ok {
		for _, opt := range p.MultiSelect {
			ev.Teams = append(ev.Teams, opt.Name)
		}
	}
	if p, ok := props["Attendees"]; ok {
		for _, person := range p.People {
			if person.Person != nil && person.Person.Email != "" {
				ev.Attendees = append(ev.Attendees, person.Person.Email)
			}
		}
	}
	if p, ok := props["Public"]; ok && p.Checkbox != nil {
		ev.Public = *p.Checkbox
	}

	return ev
}

func richText(parts []notion.RichText) string {
	out := ""
	for _, part := range parts {
		out += part.PlainText
	}
	return out
}

// formatMarker preserves the workspace's date granularity: a marker without a
// clock component stays a bare calendar date.
func formatMarker(dt notion.DateTime) string {
	if dt.HasTime() {
		return dt.Time.Format(time.RFC3339)
	}
	return dt.Time.Format(dateOnlyLayout)
}
