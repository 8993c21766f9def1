package port

import (
	"context"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
)

// UserStore persists user identities.
type UserStore interface {
	// GetUserByID returns a user or ErrUserNotFound.
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)

	// GetUserByEmail returns a user or ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateUserWithCredential inserts the user and their encrypted refresh
	// token in one transaction.
	CreateUserWithCredential(ctx context.Context, u *domain.User, provider, encryptedToken string) (*domain.User, error)
}

// CredentialStore persists one encrypted OAuth refresh token per (user, provider).
type CredentialStore interface {
	// GetEncryptedToken returns the stored blob or ErrNoCredential.
	GetEncryptedToken(ctx context.Context, userID int64, provider string) (string, error)

	// UpsertEncryptedToken overwrites the stored blob, inserting if absent.
	UpsertEncryptedToken(ctx context.Context, userID int64, provider, encryptedToken string) error
}

// MailStore persists synced mail items.
type MailStore interface {
	// LastReceivedAt returns the newest stored received_at, or nil if the
	// user has no mail rows (or only rows with a NULL timestamp).
	LastReceivedAt(ctx context.Context, userID int64) (*time.Time, error)

	// ReconcileMail upserts the batch and prunes expired rows in one
	// transaction. Already-stored items count as Fetched but not Inserted.
	ReconcileMail(ctx context.Context, userID int64, items []domain.MailItem) (*domain.SyncResult, error)

	// UncategorizedMail returns all rows with a NULL category.
	UncategorizedMail(ctx context.Context, userID int64) ([]domain.MailItem, error)

	// ApplyMailCategories writes classification results in one statement
	// and returns the affected row count.
	ApplyMailCategories(ctx context.Context, userID int64, results []domain.CategoryResult) (int64, error)

	// MailCategoryStats counts classified rows grouped by category.
	MailCategoryStats(ctx context.Context, userID int64) ([]domain.CategoryStat, error)
}

// EventStore persists synced calendar items.
type EventStore interface {
	// LastStartTime returns the newest stored start_time, or nil if the
	// user has no event rows with a start time.
	LastStartTime(ctx context.Context, userID int64) (*time.Time, error)

	// ReconcileEvents upserts the batch and prunes expired rows in one
	// transaction. Already-stored items count as Fetched but not Inserted.
	ReconcileEvents(ctx context.Context, userID int64, items []domain.CalendarItem) (*domain.SyncResult, error)

	// UncategorizedEvents returns all rows with a NULL category.
	UncategorizedEvents(ctx context.Context, userID int64) ([]domain.CalendarItem, error)

	// ApplyEventCategories writes classification results in one statement
	// and returns the affected row count.
	ApplyEventCategories(ctx context.Context, userID int64, results []domain.CategoryResult) (int64, error)

	// EventCategoryStats counts classified rows grouped by category.
	EventCategoryStats(ctx context.Context, userID int64) ([]domain.CategoryStat, error)
}
