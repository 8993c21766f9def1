package service

import (
	"context"
	"log/slog"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

// googleProvider is the only provider class modeled by the pipeline.
const googleProvider = "google"

// RefreshService composes the full pipeline for one user and item kind:
// credential → sync + reconcile → classify → category write → stats.
// Any step failure aborts the whole operation; no partial stats are
// returned.
type RefreshService struct {
	creds    *CredentialService
	sync     *SyncService
	classify *ClassifyService
	mails    port.MailStore
	events   port.EventStore
}

// NewRefreshService creates a new refresh service.
func NewRefreshService(creds *CredentialService, sync *SyncService, classify *ClassifyService, mails port.MailStore, events port.EventStore) *RefreshService {
	return &RefreshService{
		creds:    creds,
		sync:     sync,
		classify: classify,
		mails:    mails,
		events:   events,
	}
}

// SyncMail resolves the user's credential and runs the mail sync stage.
func (s *RefreshService) SyncMail(ctx context.Context, userID int64) (*domain.SyncResult, error) {
	token, err := s.creds.GetRefreshToken(ctx, googleProvider, userID)
	if err != nil {
		return nil, err
	}
	return s.sync.SyncMail(ctx, userID, token)
}

// SyncEvents resolves the user's credential and runs the event sync stage.
func (s *RefreshService) SyncEvents(ctx context.Context, userID int64) (*domain.SyncResult, error) {
	token, err := s.creds.GetRefreshToken(ctx, googleProvider, userID)
	if err != nil {
		return nil, err
	}
	return s.sync.SyncEvents(ctx, userID, token)
}

// ClassifyMail runs the mail classification stage.
func (s *RefreshService) ClassifyMail(ctx context.Context, userID int64) (int64, error) {
	return s.classify.ClassifyMail(ctx, userID)
}

// ClassifyEvents runs the event classification stage.
func (s *RefreshService) ClassifyEvents(ctx context.Context, userID int64) (int64, error) {
	return s.classify.ClassifyEvents(ctx, userID)
}

// MailStats aggregates per-category mail counts for the user.
func (s *RefreshService) MailStats(ctx context.Context, userID int64) (*domain.CategoryReport, error) {
	stats, err := s.mails.MailCategoryStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.BuildCategoryReport(stats), nil
}

// EventStats aggregates per-category event counts for the user.
func (s *RefreshService) EventStats(ctx context.Context, userID int64) (*domain.CategoryReport, error) {
	stats, err := s.events.EventCategoryStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.BuildCategoryReport(stats), nil
}

// RefreshMail runs the full mail pipeline and returns the resulting stats.
func (s *RefreshService) RefreshMail(ctx context.Context, userID int64) (*domain.CategoryReport, error) {
	if _, err := s.SyncMail(ctx, userID); err != nil {
		return nil, err
	}

	updated, err := s.ClassifyMail(ctx, userID)
	if err != nil {
		return nil, err
	}

	report, err := s.MailStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	slog.Info("mail refresh complete", "user_id", userID, "classified", updated, "total", report.Total)
	return report, nil
}

// RefreshEvents runs the full event pipeline and returns the resulting stats.
func (s *RefreshService) RefreshEvents(ctx context.Context, userID int64) (*domain.CategoryReport, error) {
	if _, err := s.SyncEvents(ctx, userID); err != nil {
		return nil, err
	}

	updated, err := s.ClassifyEvents(ctx, userID)
	if err != nil {
		return nil, err
	}

	report, err := s.EventStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	slog.Info("event refresh complete", "user_id", userID, "classified", updated, "total", report.Total)
	return report, nil
}
