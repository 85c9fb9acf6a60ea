package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/localstore"
	"github.com/soberstay/marketplace/pkg/search"
	"github.com/soberstay/marketplace/pkg/tenantstate"
)

type fakeServer struct {
	mu        sync.Mutex
	favorites []string
	srv       *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{}
	price := 700.0
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /api/listings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []search.Listing{
			{ID: "plain", PropertyName: "Plain House", City: "Austin", State: "TX", MonthlyPrice: &price},
			{ID: "boosted", PropertyName: "Boosted House", City: "Austin", State: "TX"},
			{ID: "far", PropertyName: "Far House", City: "Denver", State: "CO"},
		})
	})
	mux.HandleFunc("GET /api/featured-listings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []search.FeaturedRecord{
			{ID: "f1", ListingID: "boosted", IsActive: true, EndDate: time.Now().Add(time.Hour), BoostLevel: 2},
		})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: auth.SessionCookie, Value: "tok-1", Path: "/"})
		writeJSON(w, map[string]any{"user": auth.User{ID: 9, Email: "tess@example.com", Role: auth.RoleTenant}})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/tenant/favorites", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, append([]string{}, f.favorites...))
	})
	mux.HandleFunc("POST /api/tenant/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(auth.SessionCookie); err != nil || c.Value != "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.favorites = append(f.favorites, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// failingStore rejects writes to one key.
type failingStore struct {
	*localstore.Memory
	key string
}

func (f failingStore) Set(key string, value []byte) error {
	if key == f.key {
		return errors.New("disk full")
	}
	return f.Memory.Set(key, value)
}

type harness struct {
	store   *localstore.Memory
	srv     *fakeServer
	failKey string
	closed  int
}

func newHarness(t *testing.T) *harness {
	return &harness{store: localstore.NewMemory(), srv: newFakeServer(t)}
}

func (h *harness) exec(args ...string) (string, error) {
	var out bytes.Buffer
	open := func(w io.Writer) (*app, func(), error) {
		cfg := Config{APIURL: h.srv.srv.URL, Timeout: 5 * time.Second}
		var store localstore.Store = h.store
		if h.failKey != "" {
			store = failingStore{Memory: h.store, key: h.failKey}
		}
		return newApp(cfg, store, w), func() { h.closed++ }, nil
	}
	cmd, finish := newRootCmd(&out, open)
	cmd.SetArgs(args)
	err := cmd.Execute()
	finish()
	return out.String(), err
}

func (h *harness) run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.exec(args...)
	require.NoError(t, err)
	return out
}

func (h *harness) serverFavorites() []string {
	h.srv.mu.Lock()
	defer h.srv.mu.Unlock()
	return append([]string{}, h.srv.favorites...)
}

func TestBrowseRanksLocally(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "browse", "--location", "austin")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "boosted")
	assert.Contains(t, lines[1], "featured")
	assert.Contains(t, lines[2], "plain")
	assert.Contains(t, lines[2], "$700/mo")
	assert.Equal(t, "2 listing(s)", lines[3])

	out = h.run(t, "browse", "--max-price", "500")
	assert.Contains(t, out, "0 listing(s)")
}

func TestAnonymousFavoritesStayLocal(t *testing.T) {
	h := newHarness(t)

	h.run(t, "favorites", "add", "plain")
	out := h.run(t, "favorites", "add", "plain")
	assert.Contains(t, out, "already saved")

	assert.Equal(t, []string{"plain"}, localstore.LoadJSON[[]string](h.store, localstore.KeyFavorites))
	assert.Empty(t, h.srv.favorites)

	stats := localstore.LoadJSON[tenantstate.EngagementStats](h.store, localstore.KeyEngagement)
	assert.Equal(t, 1, stats.SavedHomes)
}

func TestLoginRoutesFavoritesToServer(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "login", "-e", "tess@example.com", "-p", "secret-pass")
	assert.Contains(t, out, "Signed in as tess@example.com (tenant)")
	assert.Contains(t, h.run(t, "whoami"), "tess@example.com")

	h.run(t, "favorites", "add", "boosted")
	assert.Equal(t, []string{"boosted"}, h.serverFavorites())
	assert.Empty(t, localstore.LoadJSON[[]string](h.store, localstore.KeyFavorites))

	assert.Contains(t, h.run(t, "favorites", "list"), "boosted")

	h.run(t, "logout")
	_, ok, err := h.store.Get(localstore.KeySession)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, h.run(t, "whoami"), "anonymous")
}

func TestBrowseMarksServerFavorites(t *testing.T) {
	h := newHarness(t)
	h.run(t, "login", "-e", "tess@example.com", "-p", "secret-pass")
	h.run(t, "favorites", "add", "boosted")

	out := h.run(t, "browse", "--location", "austin")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "featured *")
	assert.NotContains(t, lines[2], "*")
}

func TestToggleCountsSaves(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.run(t, "favorites", "toggle", "plain"), "saved")
	assert.Contains(t, h.run(t, "favorites", "toggle", "plain"), "removed")
	assert.Contains(t, h.run(t, "favorites", "toggle", "plain"), "saved")

	stats := localstore.LoadJSON[tenantstate.EngagementStats](h.store, localstore.KeyEngagement)
	assert.Equal(t, 2, stats.SavedHomes)
}

func TestFailedCommandStillFlushesWrites(t *testing.T) {
	h := newHarness(t)
	h.run(t, "login", "-e", "tess@example.com", "-p", "secret-pass")
	closedBefore := h.closed

	h.failKey = localstore.KeyEngagement
	_, err := h.exec("favorites", "add", "boosted")
	require.EqualError(t, err, "disk full")

	assert.Equal(t, []string{"boosted"}, h.serverFavorites())
	assert.Equal(t, closedBefore+1, h.closed)
}

func TestTourLifecycle(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "tours", "request", "--property", "plain", "--property-name", "Plain House", "--date", "2026-05-01", "--time", "10:00")
	require.Contains(t, out, "Requested tour_")
	id := strings.Fields(out)[1]

	out = h.run(t, "tours", "respond", id, "--status", "approved", "-m", "see you then")
	assert.Contains(t, out, "is now approved")

	out = h.run(t, "tours", "list", "--property", "plain")
	assert.Contains(t, out, "see you then")

	out = h.run(t, "stats", "show")
	assert.Contains(t, out, "applications submitted: 1")
	assert.Contains(t, out, "approvals received:     1")
}

func TestTourRequestRejectsBadDate(t *testing.T) {
	h := newHarness(t)
	_, err := h.exec("tours", "request", "--property", "p", "--date", "May 1", "--time", "10:00")
	assert.Error(t, err)
	assert.Empty(t, localstore.LoadJSON[[]tenantstate.TourRequest](h.store, localstore.KeyTourRequest))
}
