// Package notify turns marketplace events into emails for the review team.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/soberstay/marketplace/pkg/events"
	"github.com/soberstay/marketplace/pkg/logger"
	"github.com/soberstay/marketplace/services/marketplace/internal/mailer"
)

const queueGroup = "marketplace-notify"

type Worker struct {
	sub     events.Subscriber
	mail    mailer.Service
	inbox   string
	timeout time.Duration
}

func NewWorker(sub events.Subscriber, mail mailer.Service, inbox string) *Worker {
	return &Worker{sub: sub, mail: mail, inbox: inbox, timeout: 10 * time.Second}
}

// Start joins the queue group so only one replica mails per submission.
func (w *Worker) Start() error {
	return w.sub.QueueSubscribe(events.ListingSubmitted, queueGroup, w.handleSubmitted)
}

func (w *Worker) handleSubmitted(msg *events.Message) {
	var ev events.ListingSubmittedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Warn("Dropping malformed event", "subject", msg.Subject, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	notice := mailer.SubmissionNotice{
		ToEmail:      w.inbox,
		ListingID:    ev.ListingID,
		PropertyName: ev.PropertyName,
		Score:        ev.Score,
	}
	if err := w.mail.SendListingSubmitted(ctx, notice); err != nil {
		logger.ErrorContext(ctx, "Failed to send submission notice", "listing_id", ev.ListingID, "error", err)
		return
	}
	logger.InfoContext(ctx, "Submission notice sent", "listing_id", ev.ListingID)
}
