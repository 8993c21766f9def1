package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
)

func TestNormalizeEventTimed(t *testing.T) {
	ev := &calendar.Event{
		Id:          "ev-1",
		Summary:     "Design review",
		Description: "Quarterly design review",
		Location:    "Room 4",
		Start:       &calendar.EventDateTime{DateTime: "2025-06-10T14:00:00+02:00"},
		End:         &calendar.EventDateTime{DateTime: "2025-06-10T15:00:00+02:00"},
	}

	item := normalizeEvent(ev)

	assert.Equal(t, "ev-1", item.EventID)
	assert.Equal(t, "Design review", item.Title)
	assert.Equal(t, "Room 4", item.Location)
	assert.False(t, item.AllDay)

	require.NotNil(t, item.StartTime)
	require.NotNil(t, item.EndTime)
	assert.Equal(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC), item.StartTime.UTC())
}

func TestNormalizeEventAllDay(t *testing.T) {
	ev := &calendar.Event{
		Id:      "ev-2",
		Summary: "Public holiday",
		Start:   &calendar.EventDateTime{Date: "2025-06-19"},
		End:     &calendar.EventDateTime{Date: "2025-06-20"},
	}

	item := normalizeEvent(ev)

	assert.True(t, item.AllDay)
	require.NotNil(t, item.StartTime)
	assert.Equal(t, time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC), *item.StartTime)
}

func TestNormalizeEventMissingEdges(t *testing.T) {
	item := normalizeEvent(&calendar.Event{Id: "ev-3", Summary: "No times"})

	assert.False(t, item.AllDay)
	assert.Nil(t, item.StartTime)
	assert.Nil(t, item.EndTime)
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name    string
		edge    *calendar.EventDateTime
		allDay  bool
		wantNil bool
	}{
		{name: "nil edge", edge: nil, wantNil: true},
		{name: "timed", edge: &calendar.EventDateTime{DateTime: "2025-06-10T14:00:00Z"}},
		{name: "all day", edge: &calendar.EventDateTime{Date: "2025-06-10"}, allDay: true},
		{
			name:    "all day edge without date",
			edge:    &calendar.EventDateTime{DateTime: "2025-06-10T14:00:00Z"},
			allDay:  true,
			wantNil: true,
		},
		{name: "garbage", edge: &calendar.EventDateTime{DateTime: "soon"}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseEventTime(tt.edge, tt.allDay)
			if tt.wantNil {
				assert.Nil(t, got)
			} else {
				assert.NotNil(t, got)
			}
		})
	}
}
