package service

import (
	"context"
	"errors"

	"github.com/soberstay/marketplace/pkg/events"
	"github.com/soberstay/marketplace/pkg/logger"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrAlreadyReviewed     = errors.New("listing already reviewed")
	ErrChecklistIncomplete = errors.New("approval checklist incomplete")
	ErrInvalidInput        = errors.New("invalid input")
)

// publish sends an event; failures are logged and never returned.
func publish(ctx context.Context, bus events.Publisher, subject string, payload any) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
