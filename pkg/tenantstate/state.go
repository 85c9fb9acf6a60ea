// Package tenantstate holds the per-user collections a tenant builds up
// while browsing: favorites, viewing history, tour requests and engagement
// counters.
//
// Favorites and viewed homes live on the server for authenticated tenants
// and in the local store for everyone else. Tour requests and engagement
// counters are always local.
package tenantstate

import (
	"context"
	"time"

	"github.com/soberstay/marketplace/pkg/api"
	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/localstore"
	"github.com/soberstay/marketplace/pkg/logger"
)

// Session exposes the currently authenticated user, or nil when anonymous.
type Session interface {
	CurrentUser() *auth.User
}

// SessionFunc adapts a plain function to Session.
type SessionFunc func() *auth.User

func (f SessionFunc) CurrentUser() *auth.User { return f() }

// Remote is the subset of the marketplace API the tenant collections use.
// *api.Client implements it.
type Remote interface {
	ListFavorites(ctx context.Context) ([]string, error)
	AddFavorite(ctx context.Context, listingID string) error
	RemoveFavorite(ctx context.Context, listingID string) error
	ListViewedHomes(ctx context.Context) ([]api.ViewedHome, error)
	RecordView(ctx context.Context, listingID string) error
}

var _ Remote = (*api.Client)(nil)

type Config struct {
	Local   localstore.Store
	Remote  Remote
	Session Session
	// Clock defaults to time.Now.
	Clock func() time.Time
	// WriteTimeout bounds each background remote write.
	WriteTimeout time.Duration
}

func (c Config) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// remoteActive is true when the active user has a server-side store.
func (c Config) remoteActive() bool {
	if c.Remote == nil || c.Session == nil {
		return false
	}
	return c.Session.CurrentUser().IsTenant()
}

// State bundles every tenant collection for one device.
type State struct {
	Favorites  *Favorites
	Viewed     *ViewedHomes
	Tours      *Tours
	Engagement *Engagement
}

func New(cfg Config) *State {
	return &State{
		Favorites:  NewFavorites(cfg),
		Viewed:     NewViewedHomes(cfg),
		Tours:      NewTours(cfg),
		Engagement: NewEngagement(cfg),
	}
}

// ResetAll forgets the remote snapshots so the next reader fetches for
// whoever is signed in then. Local collections are untouched.
func (s *State) ResetAll() {
	s.Favorites.Reset()
	s.Viewed.Reset()
	logger.Debug("tenant state reset")
}

// Wait blocks until every pending remote write has finished.
func (s *State) Wait() {
	s.Favorites.Wait()
	s.Viewed.Wait()
}
