package dualcache

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soberstay/marketplace/pkg/localstore"
)

// fakeRemote counts fetches and can hold them open until released.
type fakeRemote struct {
	calls   atomic.Int32
	gate    chan struct{}
	items   []string
	err     error
	started chan struct{}
}

func (f *fakeRemote) fetch(ctx context.Context) ([]string, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.items), nil
}

func newCache(remote *fakeRemote, active *atomic.Bool, store localstore.Store) *Cache[string] {
	return New(Config[string]{
		Name:         "favorites",
		Key:          localstore.KeyFavorites,
		Local:        store,
		Fetch:        remote.fetch,
		RemoteActive: active.Load,
	})
}

func appendID(id string) func([]string) []string {
	return func(ids []string) []string {
		if slices.Contains(ids, id) {
			return ids
		}
		return append(ids, id)
	}
}

func TestFetchRemoteSingleFlight(t *testing.T) {
	remote := &fakeRemote{gate: make(chan struct{}), items: []string{"a", "b"}, started: make(chan struct{}, 4)}
	var active atomic.Bool
	active.Store(true)
	c := newCache(remote, &active, localstore.NewMemory())

	const callers = 5
	results := make([][]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.FetchRemote(context.Background())
		}(i)
	}

	<-remote.started
	require.Eventually(t, func() bool { return c.State() == Fetching }, time.Second, time.Millisecond)
	// give the other callers time to join the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(remote.gate)
	wg.Wait()

	assert.EqualValues(t, 1, remote.calls.Load())
	for _, r := range results {
		assert.Equal(t, []string{"a", "b"}, r)
	}
	assert.Equal(t, Resolved, c.State())

	// resolved snapshot is served without another request
	assert.Equal(t, []string{"a", "b"}, c.FetchRemote(context.Background()))
	assert.EqualValues(t, 1, remote.calls.Load())
}

func TestFetchFailureResolvesEmpty(t *testing.T) {
	remote := &fakeRemote{err: errors.New("502 bad gateway")}
	var active atomic.Bool
	active.Store(true)
	c := newCache(remote, &active, localstore.NewMemory())

	got := c.FetchRemote(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, Resolved, c.State())
}

func TestResetForcesRefetch(t *testing.T) {
	remote := &fakeRemote{items: []string{"x"}}
	var active atomic.Bool
	active.Store(true)
	c := newCache(remote, &active, localstore.NewMemory())

	c.FetchRemote(context.Background())
	c.FetchRemote(context.Background())
	require.EqualValues(t, 1, remote.calls.Load())

	c.Reset()
	assert.Equal(t, Unknown, c.State())
	c.FetchRemote(context.Background())
	assert.EqualValues(t, 2, remote.calls.Load())
}

func TestResetDuringFetchDiscardsResult(t *testing.T) {
	remote := &fakeRemote{gate: make(chan struct{}), items: []string{"stale"}, started: make(chan struct{}, 1)}
	var active atomic.Bool
	active.Store(true)
	c := newCache(remote, &active, localstore.NewMemory())

	done := make(chan []string)
	go func() { done <- c.FetchRemote(context.Background()) }()
	<-remote.started

	c.Reset()
	close(remote.gate)
	assert.Equal(t, []string{"stale"}, <-done)
	assert.Equal(t, Unknown, c.State())

	remote.gate = nil
	remote.started = nil
	remote.items = []string{"fresh"}
	assert.Equal(t, []string{"fresh"}, c.FetchRemote(context.Background()))
	assert.EqualValues(t, 2, remote.calls.Load())
}

func TestCancelledWaiterGetsCurrent(t *testing.T) {
	remote := &fakeRemote{gate: make(chan struct{}), items: []string{"a"}, started: make(chan struct{}, 1)}
	var active atomic.Bool
	active.Store(true)
	store := localstore.NewMemory()
	require.NoError(t, localstore.SaveJSON(store, localstore.KeyFavorites, []string{"local"}))
	c := newCache(remote, &active, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []string)
	go func() { done <- c.FetchRemote(ctx) }()
	<-remote.started
	cancel()
	assert.Equal(t, []string{"local"}, <-done)

	close(remote.gate)
	require.Eventually(t, func() bool { return c.State() == Resolved }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a"}, c.Current())
}

func TestCurrentNeverFetches(t *testing.T) {
	remote := &fakeRemote{items: []string{"a"}}
	var active atomic.Bool
	active.Store(true)
	store := localstore.NewMemory()
	require.NoError(t, localstore.SaveJSON(store, localstore.KeyFavorites, []string{"local"}))
	c := newCache(remote, &active, store)

	assert.Equal(t, []string{"local"}, c.Current())
	assert.Zero(t, remote.calls.Load())

	c.FetchRemote(context.Background())
	assert.Equal(t, []string{"a"}, c.Current())
}

func TestLocalModeBypassesRemote(t *testing.T) {
	remote := &fakeRemote{items: []string{"server"}}
	var active atomic.Bool
	store := localstore.NewMemory()
	c := newCache(remote, &active, store)

	var writes atomic.Int32
	write := func(context.Context) error { writes.Add(1); return nil }

	c.Mutate(context.Background(), appendID("a"), write)
	c.Mutate(context.Background(), appendID("a"), write)
	got := c.Mutate(context.Background(), appendID("b"), write)
	c.Wait()

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, []string{"a", "b"}, localstore.LoadJSON[[]string](store, localstore.KeyFavorites))
	assert.Equal(t, []string{"a", "b"}, c.FetchRemote(context.Background()))
	assert.Zero(t, remote.calls.Load())
	assert.Zero(t, writes.Load())
	assert.Equal(t, Unknown, c.State())
}

func TestRemoteMutateIsOptimistic(t *testing.T) {
	remote := &fakeRemote{items: []string{"a"}}
	var active atomic.Bool
	active.Store(true)
	store := localstore.NewMemory()
	c := newCache(remote, &active, store)

	var writes atomic.Int32
	failing := func(context.Context) error { writes.Add(1); return errors.New("network down") }

	got := c.Mutate(context.Background(), appendID("b"), failing)
	c.Wait()

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, []string{"a", "b"}, c.Current())
	assert.EqualValues(t, 1, writes.Load())
	assert.EqualValues(t, 1, remote.calls.Load())
	// remote mode never mirrors into local storage
	assert.Nil(t, localstore.LoadJSON[[]string](store, localstore.KeyFavorites))
}

func TestLocalOnlyCacheIgnoresRemoteActive(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	c := New(Config[string]{Name: "tours", Key: localstore.KeyTourRequest, Local: localstore.NewMemory(), RemoteActive: active.Load})

	assert.False(t, c.Remote())
	c.Mutate(context.Background(), appendID("t1"), nil)
	assert.Equal(t, []string{"t1"}, c.FetchRemote(context.Background()))
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	remote := &fakeRemote{items: []string{"a", "b"}}
	var active atomic.Bool
	active.Store(true)
	c := newCache(remote, &active, localstore.NewMemory())

	got := c.FetchRemote(context.Background())
	got[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, c.Current())
}
