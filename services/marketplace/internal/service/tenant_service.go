package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soberstay/marketplace/pkg/events"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
	"github.com/soberstay/marketplace/services/marketplace/internal/repository"
)

// TenantService backs the remote favorites and viewed-homes collections.
// Every write is idempotent; events fire only when something changed.
type TenantService interface {
	Favorites(ctx context.Context, tenantID int64) ([]string, error)
	AddFavorite(ctx context.Context, tenantID int64, listingID string) error
	RemoveFavorite(ctx context.Context, tenantID int64, listingID string) error
	ViewedHomes(ctx context.Context, tenantID int64) ([]domain.ViewedHome, error)
	RecordView(ctx context.Context, tenantID int64, listingID string) error
}

type tenantService struct {
	repo repository.TenantRepository
	bus  events.Publisher
	now  func() time.Time
}

func NewTenantService(repo repository.TenantRepository, bus events.Publisher) TenantService {
	return &tenantService{repo: repo, bus: bus, now: time.Now}
}

func (s *tenantService) Favorites(ctx context.Context, tenantID int64) ([]string, error) {
	ids, err := s.repo.ListFavorites(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

func (s *tenantService) AddFavorite(ctx context.Context, tenantID int64, listingID string) error {
	added, err := s.repo.AddFavorite(ctx, tenantID, listingID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if added {
		publish(ctx, s.bus, events.FavoriteAdded, events.FavoriteEvent{ListingID: listingID, TenantID: tenantID, At: s.now()})
	}
	return nil
}

func (s *tenantService) RemoveFavorite(ctx context.Context, tenantID int64, listingID string) error {
	removed, err := s.repo.RemoveFavorite(ctx, tenantID, listingID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if removed {
		publish(ctx, s.bus, events.FavoriteRemoved, events.FavoriteEvent{ListingID: listingID, TenantID: tenantID, At: s.now()})
	}
	return nil
}

func (s *tenantService) ViewedHomes(ctx context.Context, tenantID int64) ([]domain.ViewedHome, error) {
	views, err := s.repo.ListViewed(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list viewed homes: %w", err)
	}
	return views, nil
}

func (s *tenantService) RecordView(ctx context.Context, tenantID int64, listingID string) error {
	now := s.now()
	recorded, err := s.repo.RecordView(ctx, tenantID, listingID, now)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	if recorded {
		publish(ctx, s.bus, events.ListingViewed, events.ListingViewedEvent{ListingID: listingID, TenantID: tenantID, ViewedAt: now})
	}
	return nil
}
