package tenantstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/soberstay/marketplace/pkg/dualcache"
	"github.com/soberstay/marketplace/pkg/localstore"
	"github.com/soberstay/marketplace/pkg/logger"
)

var (
	ErrTourNotFound  = errors.New("tour request not found")
	ErrInvalidStatus = errors.New("invalid tour status")
)

type TourStatus string

const (
	TourPending  TourStatus = "pending"
	TourApproved TourStatus = "approved"
	TourDenied   TourStatus = "denied"
)

func ParseTourStatus(s string) (TourStatus, error) {
	switch TourStatus(s) {
	case TourPending, TourApproved, TourDenied:
		return TourStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

type TourRequest struct {
	ID              string     `json:"id"`
	PropertyID      string     `json:"propertyId"`
	PropertyName    string     `json:"propertyName"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	Status          TourStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	TenantName      string     `json:"tenantName,omitempty"`
	TenantEmail     string     `json:"tenantEmail,omitempty"`
	TourType        string     `json:"tourType,omitempty"`
	ResponseDate    *time.Time `json:"responseDate,omitempty"`
	ProviderMessage string     `json:"providerMessage,omitempty"`
	ProviderNotes   string     `json:"providerNotes,omitempty"`
}

// TourDraft is what a tenant fills in to ask for a tour.
type TourDraft struct {
	PropertyID   string
	PropertyName string
	Date         string
	Time         string
	TenantName   string
	TenantEmail  string
	TourType     string
}

// Tours is the device-local list of tour requests.
type Tours struct {
	cfg   Config
	cache *dualcache.Cache[TourRequest]
}

func NewTours(cfg Config) *Tours {
	return &Tours{
		cfg: cfg,
		cache: dualcache.New(dualcache.Config[TourRequest]{
			Name:  "tour_requests",
			Key:   localstore.KeyTourRequest,
			Local: cfg.Local,
		}),
	}
}

// Create stores a new pending request and returns it.
func (t *Tours) Create(ctx context.Context, d TourDraft) TourRequest {
	now := t.cfg.now().UTC()
	var created TourRequest
	t.cache.Mutate(ctx, func(tours []TourRequest) []TourRequest {
		created = TourRequest{
			ID:           uniqueTourID(tours, now),
			PropertyID:   d.PropertyID,
			PropertyName: d.PropertyName,
			Date:         d.Date,
			Time:         d.Time,
			Status:       TourPending,
			CreatedAt:    now,
			TenantName:   d.TenantName,
			TenantEmail:  d.TenantEmail,
			TourType:     d.TourType,
		}
		return append(tours, created)
	}, nil)
	logger.InfoContext(ctx, "tour requested", "tour_id", created.ID, "property_id", d.PropertyID)
	return created
}

func uniqueTourID(tours []TourRequest, now time.Time) string {
	for ms := now.UnixMilli(); ; ms++ {
		id := "tour_" + strconv.FormatInt(ms, 10)
		if !slices.ContainsFunc(tours, func(r TourRequest) bool { return r.ID == id }) {
			return id
		}
	}
}

func (t *Tours) List() []TourRequest {
	return t.cache.Current()
}

func (t *Tours) Get(id string) (TourRequest, error) {
	for _, r := range t.cache.Current() {
		if r.ID == id {
			return r, nil
		}
	}
	return TourRequest{}, ErrTourNotFound
}

// ForProperty returns the requests made for one listing.
func (t *Tours) ForProperty(propertyID string) []TourRequest {
	out := []TourRequest{}
	for _, r := range t.cache.Current() {
		if r.PropertyID == propertyID {
			out = append(out, r)
		}
	}
	return out
}

// UpdateStatus records a provider decision. A request that was already
// resolved can be resolved again; the previous decision is overwritten.
func (t *Tours) UpdateStatus(ctx context.Context, id string, status TourStatus, message string) (TourRequest, error) {
	if _, err := ParseTourStatus(string(status)); err != nil {
		return TourRequest{}, err
	}
	now := t.cfg.now().UTC()
	return t.update(ctx, id, func(r *TourRequest) {
		if r.Status != TourPending {
			logger.WarnContext(ctx, "tour request already resolved", "tour_id", id, "from", r.Status, "to", status)
		}
		r.Status = status
		r.ResponseDate = &now
		r.ProviderMessage = message
	})
}

func (t *Tours) SetProviderNotes(ctx context.Context, id, notes string) (TourRequest, error) {
	return t.update(ctx, id, func(r *TourRequest) { r.ProviderNotes = notes })
}

func (t *Tours) update(ctx context.Context, id string, apply func(*TourRequest)) (TourRequest, error) {
	var (
		updated TourRequest
		found   bool
	)
	t.cache.Mutate(ctx, func(tours []TourRequest) []TourRequest {
		i := slices.IndexFunc(tours, func(r TourRequest) bool { return r.ID == id })
		if i < 0 {
			return tours
		}
		apply(&tours[i])
		updated, found = tours[i], true
		return tours
	}, nil)
	if !found {
		return TourRequest{}, ErrTourNotFound
	}
	return updated, nil
}
