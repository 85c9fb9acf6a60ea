package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soberstay/marketplace/pkg/search"
)

type FeaturedRepository interface {
	List(ctx context.Context) ([]search.FeaturedRecord, error)
	Create(ctx context.Context, rec search.FeaturedRecord) (*search.FeaturedRecord, error)
	Deactivate(ctx context.Context, id string) error
	// ExpireDue deactivates active records whose end date is at or before
	// now and returns them.
	ExpireDue(ctx context.Context, now time.Time) ([]search.FeaturedRecord, error)
}

type featuredRepository struct {
	pool *pgxpool.Pool
}

func NewFeaturedRepository(pool *pgxpool.Pool) FeaturedRepository {
	return &featuredRepository{pool: pool}
}

const featuredCols = `id::text, listing_id::text, is_active, start_date, end_date, boost_level`

func scanFeatured(row rowScanner) (*search.FeaturedRecord, error) {
	var f search.FeaturedRecord
	if err := row.Scan(&f.ID, &f.ListingID, &f.IsActive, &f.StartDate, &f.EndDate, &f.BoostLevel); err != nil {
		return nil, mapErr(err)
	}
	return &f, nil
}

func collectFeatured(rows pgx.Rows) ([]search.FeaturedRecord, error) {
	defer rows.Close()
	out := []search.FeaturedRecord{}
	for rows.Next() {
		f, err := scanFeatured(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *featuredRepository) List(ctx context.Context) ([]search.FeaturedRecord, error) {
	const q = `SELECT ` + featuredCols + ` FROM featured_listings ORDER BY created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectFeatured(rows)
}

// Create returns ErrNotFound when the listing does not exist.
func (r *featuredRepository) Create(ctx context.Context, rec search.FeaturedRecord) (*search.FeaturedRecord, error) {
	const q = `
		INSERT INTO featured_listings (listing_id, is_active, start_date, end_date, boost_level)
		VALUES ($1, true, $2, $3, $4)
		RETURNING ` + featuredCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanFeatured(r.pool.QueryRow(ctx, q, rec.ListingID, rec.StartDate, rec.EndDate, rec.BoostLevel))
}

func (r *featuredRepository) Deactivate(ctx context.Context, id string) error {
	const q = `UPDATE featured_listings SET is_active = false WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *featuredRepository) ExpireDue(ctx context.Context, now time.Time) ([]search.FeaturedRecord, error) {
	const q = `
		UPDATE featured_listings SET is_active = false
		WHERE is_active AND end_date <= $1
		RETURNING ` + featuredCols

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, now)
	if err != nil {
		return nil, err
	}
	return collectFeatured(rows)
}
