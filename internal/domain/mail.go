package domain

import "time"

// MailItem is a synced Gmail message, unique per (user_id, message_id).
// Category fields stay NULL until the classifier has run; classified rows
// are immutable until retention pruning removes them.
type MailItem struct {
	ID         int64      `json:"id"          db:"id"`
	UserID     int64      `json:"user_id"     db:"user_id"`
	MessageID  string     `json:"message_id"  db:"message_id"`
	ThreadID   string     `json:"thread_id"   db:"thread_id"`
	Sender     string     `json:"sender"      db:"sender"`
	Subject    string     `json:"subject"     db:"subject"`
	Snippet    string     `json:"snippet"     db:"snippet"`
	ReceivedAt *time.Time `json:"received_at" db:"received_at"`
	Category   *string    `json:"category"    db:"category"`
	Confidence *float64   `json:"category_confidence" db:"category_confidence"`
}

// MailCategories is the closed set of categories the mail classifier may assign.
var MailCategories = []string{
	"work",
	"personal",
	"finance",
	"shopping",
	"education",
	"social",
	"promotion",
	"health",
	"travel",
	"deadline",
	"spam",
	"other",
}

// MailRetention is how long mail items are kept, measured from received_at.
const MailRetention = 7 * 24 * time.Hour
