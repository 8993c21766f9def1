package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

const (
	// mailFetchCap stops the id listing once this many refs are collected.
	mailFetchCap = 300

	// detailFetchGroup bounds how many message detail calls run at once.
	detailFetchGroup = 10
)

// SyncService is the incremental sync engine: it computes the fetch window
// from stored state, drives the provider fetch clients to completion, and
// reconciles the normalized batch into the store.
type SyncService struct {
	mails       port.MailStore
	events      port.EventStore
	newMail     port.MailSourceFactory
	newCalendar port.CalendarSourceFactory
	now         func() time.Time
}

// NewSyncService creates a new sync service.
func NewSyncService(mails port.MailStore, events port.EventStore, newMail port.MailSourceFactory, newCalendar port.CalendarSourceFactory) *SyncService {
	return &SyncService{
		mails:       mails,
		events:      events,
		newMail:     newMail,
		newCalendar: newCalendar,
		now:         time.Now,
	}
}

// SyncMail fetches new messages for the user and reconciles them.
// Provider errors propagate unmodified; there is no local retry.
func (s *SyncService) SyncMail(ctx context.Context, userID int64, refreshToken string) (*domain.SyncResult, error) {
	src, err := s.newMail(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("create mail source: %w", err)
	}

	last, err := s.mails.LastReceivedAt(ctx, userID)
	if err != nil {
		return nil, err
	}

	query := mailQuery(last, s.now())

	refs, err := s.listMailRefs(ctx, src, query)
	if err != nil {
		return nil, err
	}

	items, err := s.fetchMailDetails(ctx, src, refs)
	if err != nil {
		return nil, err
	}

	result, err := s.mails.ReconcileMail(ctx, userID, items)
	if err != nil {
		return nil, err
	}

	slog.Info("mail sync complete",
		"user_id", userID, "fetched", len(items), "deleted", result.Deleted)
	return result, nil
}

// SyncEvents fetches new calendar events for the user and reconciles them.
func (s *SyncService) SyncEvents(ctx context.Context, userID int64, refreshToken string) (*domain.SyncResult, error) {
	src, err := s.newCalendar(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("create calendar source: %w", err)
	}

	last, err := s.events.LastStartTime(ctx, userID)
	if err != nil {
		return nil, err
	}

	timeMin := eventTimeMin(last, s.now())

	var items []domain.CalendarItem
	pageToken := ""
	for {
		page, err := src.ListEvents(ctx, timeMin, pageToken)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	result, err := s.events.ReconcileEvents(ctx, userID, items)
	if err != nil {
		return nil, err
	}

	slog.Info("event sync complete",
		"user_id", userID, "fetched", len(items), "deleted", result.Deleted)
	return result, nil
}

// listMailRefs pages through the id listing until the cursor runs out or
// the fetch cap is reached.
func (s *SyncService) listMailRefs(ctx context.Context, src port.MailSource, query string) ([]port.MailRef, error) {
	var refs []port.MailRef
	pageToken := ""
	for {
		page, err := src.ListRefs(ctx, query, pageToken)
		if err != nil {
			return nil, err
		}
		refs = append(refs, page.Refs...)
		if page.NextPageToken == "" || len(refs) >= mailFetchCap {
			break
		}
		pageToken = page.NextPageToken
	}
	return refs, nil
}

// fetchMailDetails resolves full message detail in concurrent groups of
// detailFetchGroup, joining each group before dispatching the next so the
// number of in-flight provider calls stays bounded.
func (s *SyncService) fetchMailDetails(ctx context.Context, src port.MailSource, refs []port.MailRef) ([]domain.MailItem, error) {
	items := make([]domain.MailItem, len(refs))

	for start := 0; start < len(refs); start += detailFetchGroup {
		end := start + detailFetchGroup
		if end > len(refs) {
			end = len(refs)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				item, err := src.GetMessage(gctx, refs[i].ID)
				if err != nil {
					return err
				}
				if item.ThreadID == "" {
					item.ThreadID = refs[i].ThreadID
				}
				items[i] = *item
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// mailQuery builds the provider-native search filter. If the newest stored
// message is within the retention window the query resumes from that exact
// timestamp; otherwise it re-fetches the whole window.
func mailQuery(last *time.Time, now time.Time) string {
	q := "is:inbox"
	if last != nil && now.Sub(*last) < domain.MailRetention {
		return fmt.Sprintf("%s after:%d", q, last.Unix())
	}
	return q + " newer_than:7d"
}

// eventTimeMin computes the calendar fetch boundary: one month back, or
// the newest stored start time minus the sync buffer, whichever is later.
func eventTimeMin(last *time.Time, now time.Time) time.Time {
	oneMonthAgo := now.AddDate(0, -1, 0)
	if last == nil {
		return oneMonthAgo
	}
	buffered := last.Add(-domain.EventSyncBuffer)
	if buffered.Before(oneMonthAgo) {
		return oneMonthAgo
	}
	return buffered
}
