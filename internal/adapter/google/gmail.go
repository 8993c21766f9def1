package google

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

// mailPageSize is the provider page size for message id listings.
const mailPageSize = 100

// ClientConfig identifies the OAuth2 application used to mint access
// tokens from stored refresh tokens.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
}

// GmailSource implements port.MailSource against the Gmail API.
// One instance wraps one user's credential; nothing is shared between calls.
type GmailSource struct {
	svc *gmail.Service
}

// NewGmailSource builds a Gmail client from a decrypted refresh token.
func NewGmailSource(ctx context.Context, cfg ClientConfig, refreshToken string) (*GmailSource, error) {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	httpClient := conf.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &GmailSource{svc: svc}, nil
}

// ListRefs returns one page of message refs matching the search query.
func (s *GmailSource) ListRefs(ctx context.Context, query, pageToken string) (*port.MailPage, error) {
	call := s.svc.Users.Messages.List("me").
		Q(query).
		MaxResults(mailPageSize).
		IncludeSpamTrash(false)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	page := &port.MailPage{NextPageToken: res.NextPageToken}
	for _, m := range res.Messages {
		page.Refs = append(page.Refs, port.MailRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return page, nil
}

// GetMessage fetches full message detail and normalizes it.
func (s *GmailSource) GetMessage(ctx context.Context, id string) (*domain.MailItem, error) {
	msg, err := s.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return normalizeMessage(msg), nil
}

// normalizeMessage converts a Gmail message into a MailItem.
// UserID and the row id are filled in by the store.
func normalizeMessage(m *gmail.Message) *domain.MailItem {
	item := &domain.MailItem{
		MessageID: m.Id,
		ThreadID:  m.ThreadId,
		Snippet:   m.Snippet,
	}

	item.Sender = headerValue(m, "From")
	item.Subject = headerValue(m, "Subject")
	item.ReceivedAt = parseMailDate(headerValue(m, "Date"))

	return item
}

// headerValue extracts a header value from a Gmail message payload.
func headerValue(m *gmail.Message, header string) string {
	if m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == header {
			return h.Value
		}
	}
	return ""
}

// parseMailDate parses an RFC 5322 Date header. A missing or unparseable
// header yields nil; the row is stored without a timestamp and picked up
// by retention pruning.
func parseMailDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := mail.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}
