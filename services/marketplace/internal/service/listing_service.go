package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/config"
	"github.com/soberstay/marketplace/pkg/events"
	"github.com/soberstay/marketplace/pkg/logger"
	"github.com/soberstay/marketplace/pkg/search"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
	"github.com/soberstay/marketplace/services/marketplace/internal/repository"
)

// Submission is a freshly created listing with its checklist.
type Submission struct {
	Listing   search.Listing   `json:"listing"`
	Checklist domain.Checklist `json:"checklist"`
}

type ListingService interface {
	ListApproved(ctx context.Context) ([]search.Listing, error)
	Get(ctx context.Context, id string) (*search.Listing, error)
	Search(ctx context.Context, c search.Criteria) ([]search.Result, error)
	ListFeatured(ctx context.Context) ([]search.FeaturedRecord, error)
	Submit(ctx context.Context, providerID int64, req *domain.CreateListingRequest) (*Submission, error)
	ProviderListings(ctx context.Context, providerID int64) ([]search.Listing, error)
	Checklist(ctx context.Context, user auth.User, listingID string) (domain.Checklist, error)
}

type listingService struct {
	*catalog
	bus events.Publisher
	now func() time.Time
}

func NewListingService(
	listings repository.ListingRepository,
	featured repository.FeaturedRepository,
	cache Cache,
	bus events.Publisher,
	cfg *config.Config,
) ListingService {
	return &listingService{
		catalog: &catalog{listings: listings, featured: featured, cache: cache, ttl: cfg.Cache.ListingsTTL},
		bus:     bus,
		now:     time.Now,
	}
}

func (s *listingService) ListApproved(ctx context.Context) ([]search.Listing, error) {
	listings, err := s.approved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// Get returns an approved listing; anything else is not found.
func (s *listingService) Get(ctx context.Context, id string) (*search.Listing, error) {
	l, err := s.listings.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if l.Status != search.StatusApproved {
		return nil, ErrNotFound
	}
	return l, nil
}

func (s *listingService) Search(ctx context.Context, c search.Criteria) ([]search.Result, error) {
	listings, err := s.approved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	featured, err := s.featuredRecords(ctx)
	if err != nil {
		// ranking degrades to input order rather than failing the page
		logger.WarnContext(ctx, "Featured records unavailable for search", "error", err)
		featured = nil
	}
	return search.Run(listings, featured, c, s.now()), nil
}

func (s *listingService) ListFeatured(ctx context.Context) ([]search.FeaturedRecord, error) {
	records, err := s.featuredRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured listings: %w", err)
	}
	return records, nil
}

func (s *listingService) Submit(ctx context.Context, providerID int64, req *domain.CreateListingRequest) (*Submission, error) {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	created, err := s.listings.Create(ctx, req.Listing(providerID))
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	checklist := domain.EvaluateChecklist(*created)

	logger.InfoContext(ctx, "Listing submitted", "listing_id", created.ID, "provider_id", providerID, "score", checklist.Score)
	publish(ctx, s.bus, events.ListingSubmitted, events.ListingSubmittedEvent{
		ListingID:    created.ID,
		ProviderID:   providerID,
		PropertyName: created.PropertyName,
		Score:        checklist.Score,
		SubmittedAt:  created.CreatedAt,
	})
	return &Submission{Listing: *created, Checklist: checklist}, nil
}

func (s *listingService) ProviderListings(ctx context.Context, providerID int64) ([]search.Listing, error) {
	listings, err := s.listings.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider listings: %w", err)
	}
	return listings, nil
}

// Checklist is visible to the owning provider and to admins.
func (s *listingService) Checklist(ctx context.Context, user auth.User, listingID string) (domain.Checklist, error) {
	l, err := s.listings.FindByID(ctx, listingID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Checklist{}, ErrNotFound
	}
	if err != nil {
		return domain.Checklist{}, fmt.Errorf("failed to get listing: %w", err)
	}
	if user.Role != auth.RoleAdmin && l.ProviderID != user.ID {
		return domain.Checklist{}, ErrForbidden
	}
	return domain.EvaluateChecklist(*l), nil
}
