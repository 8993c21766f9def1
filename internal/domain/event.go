package domain

import "time"

// CalendarItem is a synced Google Calendar event, unique per (user_id, event_id).
// Recurring events arrive pre-expanded to single occurrences.
type CalendarItem struct {
	ID          int64      `json:"id"          db:"id"`
	UserID      int64      `json:"user_id"     db:"user_id"`
	EventID     string     `json:"event_id"    db:"event_id"`
	Title       string     `json:"title"       db:"title"`
	Description string     `json:"description" db:"description"`
	Location    string     `json:"location"    db:"location"`
	StartTime   *time.Time `json:"start_time"  db:"start_time"`
	EndTime     *time.Time `json:"end_time"    db:"end_time"`
	AllDay      bool       `json:"all_day"     db:"all_day"`
	Category    *string    `json:"category"    db:"category"`
	Confidence  *float64   `json:"category_confidence" db:"category_confidence"`
}

// EventCategories is the closed set of categories the event classifier may assign.
var EventCategories = []string{
	"work",
	"meeting",
	"personal",
	"health",
	"education",
	"travel",
	"finance",
	"deadline",
	"social",
	"reminder",
	"other",
}

// EventSyncBuffer is subtracted from the newest stored start_time when
// computing the incremental fetch window, so edits to recent events are
// picked up again. It applies to the cursor only, never to retention.
const EventSyncBuffer = 48 * time.Hour
