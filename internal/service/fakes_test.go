package service

import (
	"context"
	"sync"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

// fakeAI answers each Generate call by running the configured function.
type fakeAI struct {
	mu       sync.Mutex
	calls    []string
	generate func(prompt string) (string, error)
}

func (f *fakeAI) ModelName() string { return "fake-model" }

func (f *fakeAI) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()
	return f.generate(prompt)
}

// fakeMailStore is an in-memory port.MailStore.
type fakeMailStore struct {
	last          *time.Time
	lastErr       error
	uncategorized []domain.MailItem
	applied       []domain.CategoryResult
	reconciled    []domain.MailItem
	reconcileRes  *domain.SyncResult
	stats         []domain.CategoryStat
}

func (f *fakeMailStore) LastReceivedAt(context.Context, int64) (*time.Time, error) {
	return f.last, f.lastErr
}

func (f *fakeMailStore) ReconcileMail(_ context.Context, _ int64, items []domain.MailItem) (*domain.SyncResult, error) {
	f.reconciled = items
	if f.reconcileRes != nil {
		return f.reconcileRes, nil
	}
	return &domain.SyncResult{Fetched: len(items), Inserted: len(items)}, nil
}

func (f *fakeMailStore) UncategorizedMail(context.Context, int64) ([]domain.MailItem, error) {
	return f.uncategorized, nil
}

func (f *fakeMailStore) ApplyMailCategories(_ context.Context, _ int64, results []domain.CategoryResult) (int64, error) {
	f.applied = results
	return int64(len(results)), nil
}

func (f *fakeMailStore) MailCategoryStats(context.Context, int64) ([]domain.CategoryStat, error) {
	return f.stats, nil
}

// fakeEventStore is an in-memory port.EventStore.
type fakeEventStore struct {
	last          *time.Time
	uncategorized []domain.CalendarItem
	applied       []domain.CategoryResult
	reconciled    []domain.CalendarItem
	stats         []domain.CategoryStat
}

func (f *fakeEventStore) LastStartTime(context.Context, int64) (*time.Time, error) {
	return f.last, nil
}

func (f *fakeEventStore) ReconcileEvents(_ context.Context, _ int64, items []domain.CalendarItem) (*domain.SyncResult, error) {
	f.reconciled = items
	return &domain.SyncResult{Fetched: len(items), Inserted: len(items)}, nil
}

func (f *fakeEventStore) UncategorizedEvents(context.Context, int64) ([]domain.CalendarItem, error) {
	return f.uncategorized, nil
}

func (f *fakeEventStore) ApplyEventCategories(_ context.Context, _ int64, results []domain.CategoryResult) (int64, error) {
	f.applied = results
	return int64(len(results)), nil
}

func (f *fakeEventStore) EventCategoryStats(context.Context, int64) ([]domain.CategoryStat, error) {
	return f.stats, nil
}

// fakeMailSource serves scripted listing pages and message details.
type fakeMailSource struct {
	pages    []port.MailPage
	page     int
	queries  []string
	messages map[string]*domain.MailItem
	getErr   error
}

func (f *fakeMailSource) ListRefs(_ context.Context, query, _ string) (*port.MailPage, error) {
	f.queries = append(f.queries, query)
	if f.page >= len(f.pages) {
		return &port.MailPage{}, nil
	}
	p := f.pages[f.page]
	f.page++
	return &p, nil
}

func (f *fakeMailSource) GetMessage(_ context.Context, id string) (*domain.MailItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if m, ok := f.messages[id]; ok {
		cp := *m
		return &cp, nil
	}
	return &domain.MailItem{MessageID: id}, nil
}

// fakeCalendarSource serves scripted event pages.
type fakeCalendarSource struct {
	pages    []port.EventPage
	page     int
	timeMins []time.Time
}

func (f *fakeCalendarSource) ListEvents(_ context.Context, timeMin time.Time, _ string) (*port.EventPage, error) {
	f.timeMins = append(f.timeMins, timeMin)
	if f.page >= len(f.pages) {
		return &port.EventPage{}, nil
	}
	p := f.pages[f.page]
	f.page++
	return &p, nil
}
