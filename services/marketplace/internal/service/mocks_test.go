package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/cache"
	"github.com/soberstay/marketplace/pkg/config"
	"github.com/soberstay/marketplace/pkg/search"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
	"github.com/soberstay/marketplace/services/marketplace/internal/mailer"
	"github.com/soberstay/marketplace/services/marketplace/internal/repository"
)

// ---------- Mocks ----------

type mockUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, email, hash, name string, role auth.Role) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return nil, repository.ErrConflict
		}
	}
	u := &domain.User{ID: m.nextID, Email: email, PasswordHash: hash, Name: name, Role: role, CreatedAt: time.Now()}
	m.users[u.ID] = u
	m.nextID++
	return u, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type mockListingRepo struct {
	nextID   int
	listings map[string]*search.Listing
	order    []string
	calls    map[string]int
}

func newMockListingRepo() *mockListingRepo {
	return &mockListingRepo{nextID: 1, listings: make(map[string]*search.Listing), calls: make(map[string]int)}
}

func (m *mockListingRepo) put(l search.Listing) string {
	if l.ID == "" {
		l.ID = fmt.Sprintf("listing-%d", m.nextID)
		m.nextID++
	}
	m.listings[l.ID] = &l
	m.order = append(m.order, l.ID)
	return l.ID
}

func (m *mockListingRepo) Create(_ context.Context, l search.Listing) (*search.Listing, error) {
	m.calls["Create"]++
	l.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id := m.put(l)
	cp := *m.listings[id]
	return &cp, nil
}

func (m *mockListingRepo) FindByID(_ context.Context, id string) (*search.Listing, error) {
	m.calls["FindByID"]++
	l, ok := m.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockListingRepo) filter(keep func(*search.Listing) bool) []search.Listing {
	out := []search.Listing{}
	for _, id := range m.order {
		if l := m.listings[id]; keep(l) {
			out = append(out, *l)
		}
	}
	return out
}

func (m *mockListingRepo) ListByStatus(_ context.Context, status search.ListingStatus) ([]search.Listing, error) {
	m.calls["ListByStatus"]++
	return m.filter(func(l *search.Listing) bool { return l.Status == status }), nil
}

func (m *mockListingRepo) ListByProvider(_ context.Context, providerID int64) ([]search.Listing, error) {
	m.calls["ListByProvider"]++
	return m.filter(func(l *search.Listing) bool { return l.ProviderID == providerID }), nil
}

func (m *mockListingRepo) Review(_ context.Context, id string, status search.ListingStatus, _ int64, _ string) (*search.Listing, error) {
	m.calls["Review"]++
	l, ok := m.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if l.Status != search.StatusPending {
		return nil, repository.ErrConflict
	}
	l.Status = status
	cp := *l
	return &cp, nil
}

type mockFeaturedRepo struct {
	nextID  int
	records []search.FeaturedRecord
	known   func(listingID string) bool
	listErr error
}

func (m *mockFeaturedRepo) List(context.Context) ([]search.FeaturedRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.records), nil
}

func (m *mockFeaturedRepo) Create(_ context.Context, rec search.FeaturedRecord) (*search.FeaturedRecord, error) {
	if m.known != nil && !m.known(rec.ListingID) {
		return nil, repository.ErrNotFound
	}
	m.nextID++
	rec.ID = fmt.Sprintf("featured-%d", m.nextID)
	rec.IsActive = true
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *mockFeaturedRepo) Deactivate(_ context.Context, id string) error {
	for i := range m.records {
		if m.records[i].ID == id && m.records[i].IsActive {
			m.records[i].IsActive = false
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockFeaturedRepo) ExpireDue(_ context.Context, now time.Time) ([]search.FeaturedRecord, error) {
	var out []search.FeaturedRecord
	for i := range m.records {
		if r := &m.records[i]; r.IsActive && !r.EndDate.After(now) {
			r.IsActive = false
			out = append(out, *r)
		}
	}
	return out, nil
}

type mockTenantRepo struct {
	favorites map[int64][]string
	viewed    map[int64][]domain.ViewedHome
	known     map[string]bool
}

func newMockTenantRepo(known ...string) *mockTenantRepo {
	m := &mockTenantRepo{
		favorites: make(map[int64][]string),
		viewed:    make(map[int64][]domain.ViewedHome),
		known:     make(map[string]bool),
	}
	for _, id := range known {
		m.known[id] = true
	}
	return m
}

func (m *mockTenantRepo) ListFavorites(_ context.Context, tenantID int64) ([]string, error) {
	return slices.Clone(m.favorites[tenantID]), nil
}

func (m *mockTenantRepo) AddFavorite(_ context.Context, tenantID int64, listingID string) (bool, error) {
	if !m.known[listingID] {
		return false, repository.ErrNotFound
	}
	if slices.Contains(m.favorites[tenantID], listingID) {
		return false, nil
	}
	m.favorites[tenantID] = append(m.favorites[tenantID], listingID)
	return true, nil
}

func (m *mockTenantRepo) RemoveFavorite(_ context.Context, tenantID int64, listingID string) (bool, error) {
	i := slices.Index(m.favorites[tenantID], listingID)
	if i < 0 {
		return false, nil
	}
	m.favorites[tenantID] = slices.Delete(m.favorites[tenantID], i, i+1)
	return true, nil
}

func (m *mockTenantRepo) ListViewed(_ context.Context, tenantID int64) ([]domain.ViewedHome, error) {
	return slices.Clone(m.viewed[tenantID]), nil
}

func (m *mockTenantRepo) RecordView(_ context.Context, tenantID int64, listingID string, at time.Time) (bool, error) {
	if !m.known[listingID] {
		return false, repository.ErrNotFound
	}
	for _, v := range m.viewed[tenantID] {
		if v.PropertyID == listingID {
			return false, nil
		}
	}
	m.viewed[tenantID] = append([]domain.ViewedHome{{PropertyID: listingID, ViewedAt: at}}, m.viewed[tenantID]...)
	return true, nil
}

// mockCache stores JSON like the redis store does.
type mockCache struct {
	data    map[string][]byte
	deletes int
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dst any) error {
	if m.getErr != nil {
		return m.getErr
	}
	b, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dst)
}

func (m *mockCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	m.deletes++
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type published struct {
	subject string
	payload any
}

type mockBus struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (m *mockBus) Publish(_ context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, published{subject: subject, payload: data})
	return m.err
}

func (m *mockBus) Close() error { return nil }

func (m *mockBus) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.subject)
	}
	return out
}

type mockMailer struct {
	sent    []mailer.ReviewNotice
	sendErr error
}

func (m *mockMailer) SendListingReviewed(_ context.Context, n mailer.ReviewNotice) error {
	m.sent = append(m.sent, n)
	return m.sendErr
}

func (m *mockMailer) SendListingSubmitted(context.Context, mailer.SubmissionNotice) error {
	return m.sendErr
}

func testConfig() *config.Config {
	return &config.Config{
		Auth:  config.AuthConfig{JWTSecret: "test-secret", SessionTTL: time.Hour, AdminBootstrap: "Root@Example.com"},
		Cache: config.CacheConfig{ListingsTTL: time.Minute},
	}
}

func price(v float64) *float64 { return &v }

// readyListing passes every required checklist rule.
func readyListing(providerID int64) search.Listing {
	return search.Listing{
		ProviderID:   providerID,
		PropertyName: "Harbor House",
		Address:      "1 Main St",
		City:         "Austin",
		State:        "TX",
		MonthlyPrice: price(800),
		ContactEmail: "owner@example.com",
		Status:       search.StatusPending,
	}
}
