package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soberstay/marketplace/pkg/search"
)

type ListingRepository interface {
	Create(ctx context.Context, l search.Listing) (*search.Listing, error)
	FindByID(ctx context.Context, id string) (*search.Listing, error)
	ListByStatus(ctx context.Context, status search.ListingStatus) ([]search.Listing, error)
	ListByProvider(ctx context.Context, providerID int64) ([]search.Listing, error)
	// Review moves a pending listing to status. It returns ErrConflict when
	// the listing was already reviewed.
	Review(ctx context.Context, id string, status search.ListingStatus, reviewerID int64, note string) (*search.Listing, error)
}

type listingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &listingRepository{pool: pool}
}

const listingCols = `id::text, provider_id, property_name, description, address, city, state,
	monthly_price::float8, gender, supervision_type, room_type, is_mat_friendly, accepts_couples,
	photos, house_rules, contact_email, contact_phone, status, created_at, updated_at`

func scanListing(row rowScanner) (*search.Listing, error) {
	var l search.Listing
	err := row.Scan(
		&l.ID, &l.ProviderID, &l.PropertyName, &l.Description, &l.Address, &l.City, &l.State,
		&l.MonthlyPrice, &l.Gender, &l.SupervisionType, &l.RoomType, &l.IsMATFriendly, &l.AcceptsCouples,
		&l.Photos, &l.HouseRules, &l.ContactEmail, &l.ContactPhone, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func collectListings(rows pgx.Rows) ([]search.Listing, error) {
	defer rows.Close()
	out := []search.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *listingRepository) Create(ctx context.Context, l search.Listing) (*search.Listing, error) {
	const q = `
		INSERT INTO listings (
			provider_id, property_name, description, address, city, state, monthly_price,
			gender, supervision_type, room_type, is_mat_friendly, accepts_couples,
			photos, house_rules, contact_email, contact_phone, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + listingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}
	return scanListing(r.pool.QueryRow(ctx, q,
		l.ProviderID, l.PropertyName, l.Description, l.Address, l.City, l.State, l.MonthlyPrice,
		l.Gender, l.SupervisionType, l.RoomType, l.IsMATFriendly, l.AcceptsCouples,
		photos, l.HouseRules, l.ContactEmail, l.ContactPhone, l.Status,
	))
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (*search.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanListing(r.pool.QueryRow(ctx, q, id))
}

// ListByStatus orders by submission time so the query engine sees a stable
// input order.
func (r *listingRepository) ListByStatus(ctx context.Context, status search.ListingStatus) ([]search.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings WHERE status = $1 ORDER BY created_at, id`
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, status)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

func (r *listingRepository) ListByProvider(ctx context.Context, providerID int64) ([]search.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings WHERE provider_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

func (r *listingRepository) Review(ctx context.Context, id string, status search.ListingStatus, reviewerID int64, note string) (*search.Listing, error) {
	const q = `
		UPDATE listings
		SET status = $2, reviewed_by = $3, review_note = $4, reviewed_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + listingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	l, err := scanListing(r.pool.QueryRow(ctx, q, id, status, reviewerID, note))
	if !errors.Is(err, ErrNotFound) {
		return l, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, mapErr(err)
	}
	if exists {
		return nil, ErrConflict
	}
	return nil, ErrNotFound
}
