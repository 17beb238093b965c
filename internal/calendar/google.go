package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// API is the slice of the Google Calendar surface the mirror manager needs.
type API interface {
	ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error)
	CreateCalendar(ctx context.Context, cal *gcal.Calendar) (*gcal.Calendar, error)
	ListACL(ctx context.Context, calendarID string) ([]*gcal.AclRule, error)
	InsertACL(ctx context.Context, calendarID string, rule *gcal.AclRule) error
	ListEventIDs(ctx context.Context, calendarID string) ([]string, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event *gcal.Event) error
	InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// googleClient is the production API backed by a service account. The service
// account owns every mirror calendar and shares each one read-only with its
// member.
type googleClient struct {
	svc *gcal.Service
}

// NewGoogleClient authenticates with the service account key, given either as
// a file path or as the JSON itself.
func NewGoogleClient(ctx context.Context, key string) (API, error) {
	data := []byte(key)
	if !json.Valid(data) {
		var err error
		data, err = os.ReadFile(key)
		if err != nil {
			return nil, fmt.Errorf("read service account key: %w", err)
		}
	}

	jwtCfg, err := google.JWTConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &googleClient{svc: svc}, nil
}

func (g *googleClient) ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error) {
	var entries []*gcal.CalendarListEntry
	pageToken := ""
	for {
		call := g.svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		entries = append(entries, resp.Items...)
		if resp.NextPageToken == "" {
			return entries, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (g *googleClient) CreateCalendar(ctx context.Context, cal *gcal.Calendar) (*gcal.Calendar, error) {
	return g.svc.Calendars.Insert(cal).Context(ctx).Do()
}

func (g *googleClient) ListACL(ctx context.Context, calendarID string) ([]*gcal.AclRule, error) {
	resp, err := g.svc.Acl.List(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (g *googleClient) InsertACL(ctx context.Context, calendarID string, rule *gcal.AclRule) error {
	_, err := g.svc.Acl.Insert(calendarID, rule).Context(ctx).Do()
	return err
}

func (g *googleClient) ListEventIDs(ctx context.Context, calendarID string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		call := g.svc.Events.List(calendarID).ShowDeleted(false).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			ids = append(ids, item.Id)
		}
		if resp.NextPageToken == "" {
			return ids, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (g *googleClient) UpdateEvent(ctx context.Context, calendarID, eventID string, event *gcal.Event) error {
	_, err := g.svc.Events.Update(calendarID, eventID, event).Context(ctx).Do()
	return err
}

func (g *googleClient) InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) error {
	_, err := g.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	return err
}

func (g *googleClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

// isStatus reports whether err carries a Google API error with one of the
// given HTTP codes, unwrapping as needed.
func isStatus(err error, codes ...int) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	for _, code := range codes {
		if gerr.Code == code {
			return true
		}
	}
	return false
}
