package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

// fakeCredStore holds one blob per user.
type fakeCredStore struct {
	blobs map[int64]string
}

func (f *fakeCredStore) GetEncryptedToken(_ context.Context, userID int64, _ string) (string, error) {
	blob, ok := f.blobs[userID]
	if !ok {
		return "", port.ErrNoCredential
	}
	return blob, nil
}

func (f *fakeCredStore) UpsertEncryptedToken(_ context.Context, userID int64, _, blob string) error {
	f.blobs[userID] = blob
	return nil
}

// plainCodec stores secrets as-is.
type plainCodec struct{}

func (plainCodec) Encrypt(s string) (string, error) { return s, nil }
func (plainCodec) Decrypt(s string) (string, error) { return s, nil }

func newRefreshFixture(mails *fakeMailStore, events *fakeEventStore, ai *fakeAI, src *fakeMailSource) *RefreshService {
	creds := NewCredentialService(&fakeCredStore{blobs: map[int64]string{1: "stored-token"}}, plainCodec{})

	sync := NewSyncService(mails, events,
		func(context.Context, string) (port.MailSource, error) { return src, nil },
		func(context.Context, string) (port.CalendarSource, error) {
			return &fakeCalendarSource{}, nil
		},
	)
	sync.now = fixedNow

	classify := NewClassifyService(ai, mails, events)

	return NewRefreshService(creds, sync, classify, mails, events)
}

func TestRefreshMailFullPipeline(t *testing.T) {
	src := &fakeMailSource{pages: []port.MailPage{refPage(0, 3, "")}}
	mails := &fakeMailStore{
		uncategorized: mailItems(3),
		stats: []domain.CategoryStat{
			{Category: "work", Count: 2},
			{Category: "other", Count: 1},
		},
	}
	ai := &fakeAI{generate: echoClassifier("work")}

	svc := newRefreshFixture(mails, &fakeEventStore{}, ai, src)

	report, err := svc.RefreshMail(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.CategoryCount)
	assert.Len(t, mails.reconciled, 3)
	assert.Len(t, mails.applied, 3)
}

func TestRefreshMailNoCredential(t *testing.T) {
	svc := newRefreshFixture(&fakeMailStore{}, &fakeEventStore{}, &fakeAI{}, &fakeMailSource{})

	_, err := svc.RefreshMail(context.Background(), 99)
	assert.ErrorIs(t, err, port.ErrNoCredential)
}

func TestMailStatsEmpty(t *testing.T) {
	svc := newRefreshFixture(&fakeMailStore{}, &fakeEventStore{}, &fakeAI{}, &fakeMailSource{})

	report, err := svc.MailStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Zero(t, report.Total)
	assert.Zero(t, report.CategoryCount)
	assert.NotNil(t, report.Categories)
	assert.Empty(t, report.Categories)
}
