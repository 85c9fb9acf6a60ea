package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soberstay/marketplace/pkg/config"
	"github.com/soberstay/marketplace/pkg/events"
	"github.com/soberstay/marketplace/pkg/logger"
	"github.com/soberstay/marketplace/pkg/search"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
	"github.com/soberstay/marketplace/services/marketplace/internal/mailer"
	"github.com/soberstay/marketplace/services/marketplace/internal/repository"
)

type AdminService interface {
	ListByStatus(ctx context.Context, status search.ListingStatus) ([]search.Listing, error)
	Review(ctx context.Context, reviewerID int64, listingID string, req *domain.ReviewRequest) (*search.Listing, error)
	CreateFeatured(ctx context.Context, req *domain.CreateFeaturedRequest) (*search.FeaturedRecord, error)
	DeleteFeatured(ctx context.Context, id string) error
	// ExpireFeatured deactivates featured records that have ended and
	// returns how many it touched.
	ExpireFeatured(ctx context.Context, now time.Time) (int, error)
}

type adminService struct {
	*catalog
	users  repository.UserRepository
	mailer mailer.Service
	bus    events.Publisher
	now    func() time.Time
}

func NewAdminService(
	listings repository.ListingRepository,
	featured repository.FeaturedRepository,
	users repository.UserRepository,
	cache Cache,
	mail mailer.Service,
	bus events.Publisher,
	cfg *config.Config,
) AdminService {
	return &adminService{
		catalog: &catalog{listings: listings, featured: featured, cache: cache, ttl: cfg.Cache.ListingsTTL},
		users:   users,
		mailer:  mail,
		bus:     bus,
		now:     time.Now,
	}
}

func (s *adminService) ListByStatus(ctx context.Context, status search.ListingStatus) ([]search.Listing, error) {
	listings, err := s.listings.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s listings: %w", status, err)
	}
	return listings, nil
}

func (s *adminService) Review(ctx context.Context, reviewerID int64, listingID string, req *domain.ReviewRequest) (*search.Listing, error) {
	req.Note = strings.TrimSpace(req.Note)
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	current, err := s.listings.FindByID(ctx, listingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if req.Decision == domain.DecisionApprove {
		if cl := domain.EvaluateChecklist(*current); !cl.Ready() {
			return nil, fmt.Errorf("%w: missing %s", ErrChecklistIncomplete, strings.Join(cl.MissingRequired, ", "))
		}
	}

	reviewed, err := s.listings.Review(ctx, listingID, req.Decision.Status(), reviewerID, req.Note)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return nil, ErrAlreadyReviewed
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to review listing: %w", err)
	}

	s.invalidate(ctx)
	logger.InfoContext(ctx, "Listing reviewed", "listing_id", listingID, "decision", req.Decision, "reviewer_id", reviewerID)
	publish(ctx, s.bus, events.ListingReviewed, events.ListingReviewedEvent{
		ListingID:  reviewed.ID,
		ProviderID: reviewed.ProviderID,
		Decision:   string(req.Decision),
		ReviewerID: reviewerID,
		Note:       req.Note,
		ReviewedAt: s.now(),
	})
	s.notifyProvider(ctx, reviewed, req)
	return reviewed, nil
}

// notifyProvider emails the listing owner. Failures are logged only.
func (s *adminService) notifyProvider(ctx context.Context, l *search.Listing, req *domain.ReviewRequest) {
	provider, err := s.users.FindByID(ctx, l.ProviderID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load provider for review email", "provider_id", l.ProviderID, "error", err)
		return
	}
	err = s.mailer.SendListingReviewed(ctx, mailer.ReviewNotice{
		ToEmail:      provider.Email,
		ToName:       provider.Name,
		PropertyName: l.PropertyName,
		Approved:     req.Decision == domain.DecisionApprove,
		Note:         req.Note,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to send review email", "listing_id", l.ID, "error", err)
	}
}

func (s *adminService) CreateFeatured(ctx context.Context, req *domain.CreateFeaturedRequest) (*search.FeaturedRecord, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	start := s.now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if !req.EndDate.After(start) {
		return nil, fmt.Errorf("%w: endDate must be after startDate", ErrInvalidInput)
	}

	rec, err := s.featured.Create(ctx, search.FeaturedRecord{
		ListingID:  req.ListingID,
		StartDate:  start,
		EndDate:    req.EndDate,
		BoostLevel: req.BoostLevel,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create featured listing: %w", err)
	}

	s.invalidate(ctx)
	publish(ctx, s.bus, events.FeaturedCreated, events.FeaturedCreatedEvent{
		FeaturedID: rec.ID,
		ListingID:  rec.ListingID,
		BoostLevel: rec.BoostLevel,
		EndDate:    rec.EndDate,
	})
	return rec, nil
}

func (s *adminService) DeleteFeatured(ctx context.Context, id string) error {
	err := s.featured.Deactivate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to deactivate featured listing: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *adminService) ExpireFeatured(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.featured.ExpireDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire featured listings: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	s.invalidate(ctx)
	for _, rec := range expired {
		publish(ctx, s.bus, events.FeaturedExpired, events.FeaturedExpiredEvent{
			FeaturedID: rec.ID,
			ListingID:  rec.ListingID,
			ExpiredAt:  now,
		})
	}
	logger.InfoContext(ctx, "Featured listings expired", "count", len(expired))
	return len(expired), nil
}
