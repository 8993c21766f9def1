package google

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

// eventPageSize is the provider page size for event listings.
const eventPageSize = 250

// CalendarSource implements port.CalendarSource against the Google
// Calendar API, reading the user's primary calendar.
type CalendarSource struct {
	svc *calendar.Service
}

// NewCalendarSource builds a Calendar client from a decrypted refresh token.
func NewCalendarSource(ctx context.Context, cfg ClientConfig, refreshToken string) (*CalendarSource, error) {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2google.Endpoint,
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}

	httpClient := conf.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &CalendarSource{svc: svc}, nil
}

// ListEvents returns one page of single-occurrence events ordered by start
// time. Cancelled events are filtered out before normalization.
func (s *CalendarSource) ListEvents(ctx context.Context, timeMin time.Time, pageToken string) (*port.EventPage, error) {
	call := s.svc.Events.List("primary").
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(eventPageSize)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	page := &port.EventPage{NextPageToken: res.NextPageToken}
	for _, ev := range res.Items {
		if ev.Status == "cancelled" {
			continue
		}
		page.Items = append(page.Items, normalizeEvent(ev))
	}
	return page, nil
}

// normalizeEvent converts a Calendar event into a CalendarItem.
// All-day events carry a date instead of a datetime on both edges.
func normalizeEvent(ev *calendar.Event) domain.CalendarItem {
	allDay := ev.Start != nil && ev.Start.Date != ""

	return domain.CalendarItem{
		EventID:     ev.Id,
		Title:       ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		StartTime:   parseEventTime(ev.Start, allDay),
		EndTime:     parseEventTime(ev.End, allDay),
		AllDay:      allDay,
	}
}

// parseEventTime reads an event edge, preferring the whole-day date for
// all-day events. Unparseable or absent edges yield nil.
func parseEventTime(edge *calendar.EventDateTime, allDay bool) *time.Time {
	if edge == nil {
		return nil
	}

	var raw string
	var layout string
	if allDay {
		raw, layout = edge.Date, "2006-01-02"
	} else {
		raw, layout = edge.DateTime, time.RFC3339
	}
	if raw == "" {
		return nil
	}

	t, err := time.Parse(layout, raw)
	if err != nil {
		return nil
	}
	return &t
}
