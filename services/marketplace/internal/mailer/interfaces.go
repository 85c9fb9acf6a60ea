package mailer

import (
	"context"

	"github.com/soberstay/marketplace/pkg/config"
	"github.com/soberstay/marketplace/pkg/logger"
)

// ReviewNotice tells a provider how their listing submission went.
type ReviewNotice struct {
	ToEmail      string
	ToName       string
	PropertyName string
	Approved     bool
	Note         string
}

// SubmissionNotice tells the review inbox a listing is waiting.
type SubmissionNotice struct {
	ToEmail      string
	ListingID    string
	PropertyName string
	Score        int
}

type Service interface {
	SendListingReviewed(ctx context.Context, n ReviewNotice) error
	SendListingSubmitted(ctx context.Context, n SubmissionNotice) error
}

// New picks the dev mailer in dev mode or when MailerSend is not configured.
func New(cfg config.EmailConfig) Service {
	if cfg.DevMode || cfg.MailerSendKey == "" {
		logger.Info("Using dev mailer", "dev_mode", cfg.DevMode)
		return NewDevMailer()
	}
	return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.From)
}

func subjectFor(n ReviewNotice) string {
	if n.Approved {
		return "Your Sober Stay listing is live"
	}
	return "Your Sober Stay listing needs changes"
}
