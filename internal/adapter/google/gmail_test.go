package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func TestNormalizeMessage(t *testing.T) {
	msg := &gmail.Message{
		Id:       "msg-1",
		ThreadId: "thr-1",
		Snippet:  "Hi there, quick question about...",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Alice <alice@example.com>"},
				{Name: "Subject", Value: "Quick question"},
				{Name: "Date", Value: "Mon, 02 Jun 2025 15:04:05 +0200"},
			},
		},
	}

	item := normalizeMessage(msg)

	assert.Equal(t, "msg-1", item.MessageID)
	assert.Equal(t, "thr-1", item.ThreadID)
	assert.Equal(t, "Alice <alice@example.com>", item.Sender)
	assert.Equal(t, "Quick question", item.Subject)
	assert.Equal(t, "Hi there, quick question about...", item.Snippet)

	require.NotNil(t, item.ReceivedAt)
	assert.Equal(t, time.Date(2025, 6, 2, 13, 4, 5, 0, time.UTC), item.ReceivedAt.UTC())
}

func TestNormalizeMessageMissingHeaders(t *testing.T) {
	item := normalizeMessage(&gmail.Message{Id: "msg-2"})

	assert.Equal(t, "msg-2", item.MessageID)
	assert.Empty(t, item.Sender)
	assert.Empty(t, item.Subject)
	assert.Nil(t, item.ReceivedAt)
}

func TestParseMailDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantNil bool
	}{
		{name: "rfc 5322", input: "Tue, 10 Jun 2025 09:00:00 -0700"},
		{name: "empty", input: "", wantNil: true},
		{name: "garbage", input: "not a date", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMailDate(tt.input)
			if tt.wantNil {
				assert.Nil(t, got)
			} else {
				assert.NotNil(t, got)
			}
		})
	}
}
