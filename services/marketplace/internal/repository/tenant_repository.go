package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
)

// TenantRepository stores favorites and viewing history. Writes are
// idempotent and report whether anything changed.
type TenantRepository interface {
	ListFavorites(ctx context.Context, tenantID int64) ([]string, error)
	AddFavorite(ctx context.Context, tenantID int64, listingID string) (bool, error)
	RemoveFavorite(ctx context.Context, tenantID int64, listingID string) (bool, error)
	ListViewed(ctx context.Context, tenantID int64) ([]domain.ViewedHome, error)
	RecordView(ctx context.Context, tenantID int64, listingID string, at time.Time) (bool, error)
}

type tenantRepository struct {
	pool *pgxpool.Pool
}

func NewTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &tenantRepository{pool: pool}
}

func (r *tenantRepository) ListFavorites(ctx context.Context, tenantID int64) ([]string, error) {
	const q = `SELECT listing_id::text FROM tenant_favorites WHERE tenant_id = $1 ORDER BY created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddFavorite returns ErrNotFound for an unknown listing.
func (r *tenantRepository) AddFavorite(ctx context.Context, tenantID int64, listingID string) (bool, error) {
	const q = `
		INSERT INTO tenant_favorites (tenant_id, listing_id) VALUES ($1, $2)
		ON CONFLICT (tenant_id, listing_id) DO NOTHING`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, tenantID, listingID)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *tenantRepository) RemoveFavorite(ctx context.Context, tenantID int64, listingID string) (bool, error) {
	const q = `DELETE FROM tenant_favorites WHERE tenant_id = $1 AND listing_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, tenantID, listingID)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *tenantRepository) ListViewed(ctx context.Context, tenantID int64) ([]domain.ViewedHome, error) {
	const q = `
		SELECT listing_id::text, viewed_at FROM tenant_viewed_homes
		WHERE tenant_id = $1
		ORDER BY viewed_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []domain.ViewedHome{}
	for rows.Next() {
		var v domain.ViewedHome
		if err := rows.Scan(&v.PropertyID, &v.ViewedAt); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// RecordView keeps the first view of a listing; repeats change nothing.
func (r *tenantRepository) RecordView(ctx context.Context, tenantID int64, listingID string, at time.Time) (bool, error) {
	const q = `
		INSERT INTO tenant_viewed_homes (tenant_id, listing_id, viewed_at) VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, listing_id) DO NOTHING`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, tenantID, listingID, at)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}
