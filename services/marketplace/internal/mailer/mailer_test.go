package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soberstay/marketplace/pkg/config"
	"github.com/soberstay/marketplace/pkg/logger"
)

func TestNewPicksDevMailer(t *testing.T) {
	_, ok := New(config.EmailConfig{DevMode: true, MailerSendKey: "key"}).(*DevMailer)
	assert.True(t, ok)

	_, ok = New(config.EmailConfig{From: "noreply@soberstay.test"}).(*DevMailer)
	assert.True(t, ok, "missing api key falls back to the dev mailer")

	_, ok = New(config.EmailConfig{MailerSendKey: "key", From: "noreply@soberstay.test"}).(*MailerSendClient)
	assert.True(t, ok)
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "Your Sober Stay listing is live", subjectFor(ReviewNotice{Approved: true}))
	assert.Equal(t, "Your Sober Stay listing needs changes", subjectFor(ReviewNotice{}))
}

func TestDevMailerLogs(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Default()
	logger.SetDefault(logger.New(&buf, "info", false))
	t.Cleanup(func() { logger.SetDefault(prev) })

	m := NewDevMailer()
	require.NoError(t, m.SendListingReviewed(context.Background(), ReviewNotice{
		ToEmail:      "pat@example.com",
		PropertyName: "Cedar House",
		Approved:     true,
	}))
	require.NoError(t, m.SendListingSubmitted(context.Background(), SubmissionNotice{
		ToEmail:      "review@soberstay.test",
		ListingID:    "l-1",
		PropertyName: "Cedar House",
		Score:        70,
	}))

	out := buf.String()
	assert.Contains(t, out, "pat@example.com")
	assert.Contains(t, out, "Your Sober Stay listing is live")
	assert.Contains(t, out, `"score":70`)
}

func TestMailerSendDisabledWithoutKey(t *testing.T) {
	m := NewMailerSend("", "Sober Stay", "noreply@soberstay.test")
	err := m.SendListingSubmitted(context.Background(), SubmissionNotice{ToEmail: "review@soberstay.test"})
	assert.EqualError(t, err, "MailerSend not configured")
}
