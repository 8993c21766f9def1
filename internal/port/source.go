package port

import (
	"context"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
)

// MailRef is one entry of a paginated message id listing.
type MailRef struct {
	ID       string
	ThreadID string
}

// MailPage is one page of a message id listing. NextPageToken is the
// opaque provider cursor; empty means the listing is exhausted.
type MailPage struct {
	Refs          []MailRef
	NextPageToken string
}

// MailSource wraps the mail provider API for a single credential.
// Instances are constructed per call — the credential travels with the
// source, never through shared state.
type MailSource interface {
	// ListRefs returns one page of message refs matching a provider-native
	// search query.
	ListRefs(ctx context.Context, query, pageToken string) (*MailPage, error)

	// GetMessage fetches full message detail and normalizes it.
	// UserID and row id are left unset.
	GetMessage(ctx context.Context, id string) (*domain.MailItem, error)
}

// EventPage is one page of a calendar event listing, already normalized.
// Cancelled events are filtered out by the source.
type EventPage struct {
	Items         []domain.CalendarItem
	NextPageToken string
}

// CalendarSource wraps the calendar provider API for a single credential.
type CalendarSource interface {
	// ListEvents returns one page of single-occurrence events starting at
	// or after timeMin, ordered by start time.
	ListEvents(ctx context.Context, timeMin time.Time, pageToken string) (*EventPage, error)
}

// MailSourceFactory builds a MailSource from a decrypted refresh token.
type MailSourceFactory func(ctx context.Context, refreshToken string) (MailSource, error)

// CalendarSourceFactory builds a CalendarSource from a decrypted refresh token.
type CalendarSourceFactory func(ctx context.Context, refreshToken string) (CalendarSource, error)
