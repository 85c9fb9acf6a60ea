package mailer

import (
	"context"

	"github.com/soberstay/marketplace/pkg/logger"
)

// DevMailer logs emails instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendListingReviewed(ctx context.Context, n ReviewNotice) error {
	logger.InfoContext(ctx, "[DEV MAIL] Listing review",
		"to", n.ToEmail,
		"name", n.ToName,
		"subject", subjectFor(n),
		"property", n.PropertyName,
		"approved", n.Approved,
		"note", n.Note,
	)
	return nil
}

func (d *DevMailer) SendListingSubmitted(ctx context.Context, n SubmissionNotice) error {
	logger.InfoContext(ctx, "[DEV MAIL] Listing submitted",
		"to", n.ToEmail,
		"listing_id", n.ListingID,
		"property", n.PropertyName,
		"score", n.Score,
	)
	return nil
}
