// Package dualcache serves a per-user collection from a memoized remote
// snapshot when the active user has a server-side store, and from the local
// persistent store otherwise.
//
// Remote reads are single-flight: callers that arrive while a fetch is in
// flight wait for that fetch instead of starting another. Mutations update
// the snapshot immediately and send the remote write in the background;
// write failures are logged and never roll the snapshot back.
package dualcache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/soberstay/marketplace/pkg/localstore"
	"github.com/soberstay/marketplace/pkg/logger"
)

type State int

const (
	Unknown State = iota
	Fetching
	Resolved
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Fetching:
		return "fetching"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FetchFunc loads the remote collection.
type FetchFunc[E any] func(ctx context.Context) ([]E, error)

// WriteFunc sends one mutation to the remote store.
type WriteFunc func(ctx context.Context) error

type Config[E any] struct {
	// Name labels log lines and the single-flight key.
	Name string
	// Key is the local store key used in local mode.
	Key   string
	Local localstore.Store
	// Fetch is nil for collections that only live locally.
	Fetch FetchFunc[E]
	// RemoteActive is consulted on every call; false selects local mode.
	RemoteActive func() bool
	// WriteTimeout bounds each background remote write.
	WriteTimeout time.Duration
}

type Cache[E any] struct {
	name         string
	key          string
	local        localstore.Store
	fetch        FetchFunc[E]
	remoteActive func() bool
	writeTimeout time.Duration

	group   singleflight.Group
	pending sync.WaitGroup

	mu       sync.Mutex
	state    State
	snapshot []E
	gen      uint64
}

func New[E any](cfg Config[E]) *Cache[E] {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Cache[E]{
		name:         cfg.Name,
		key:          cfg.Key,
		local:        cfg.Local,
		fetch:        cfg.Fetch,
		remoteActive: cfg.RemoteActive,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Remote reports whether calls currently go to the remote snapshot.
func (c *Cache[E]) Remote() bool {
	return c.fetch != nil && c.remoteActive != nil && c.remoteActive()
}

func (c *Cache[E]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FetchRemote returns the resolved remote collection, fetching it at most
// once per generation. A failed fetch resolves to an empty collection. If
// ctx ends while waiting, the caller gets Current() and the shared fetch
// carries on for the other waiters.
func (c *Cache[E]) FetchRemote(ctx context.Context) []E {
	if !c.Remote() {
		return c.loadLocal()
	}

	c.mu.Lock()
	if c.state == Resolved {
		out := slices.Clone(c.snapshot)
		c.mu.Unlock()
		return out
	}
	c.state = Fetching
	gen := c.gen
	// DoChan is issued under mu so a caller can never observe Fetching after
	// the in-flight call has already been released.
	ch := c.group.DoChan(c.flightKey(gen), func() (any, error) {
		return c.resolve(context.WithoutCancel(ctx), gen), nil
	})
	c.mu.Unlock()

	select {
	case res := <-ch:
		return slices.Clone(res.Val.([]E))
	case <-ctx.Done():
		return c.Current()
	}
}

func (c *Cache[E]) flightKey(gen uint64) string {
	return fmt.Sprintf("%s#%d", c.name, gen)
}

func (c *Cache[E]) resolve(ctx context.Context, gen uint64) []E {
	items, err := c.fetch(ctx)
	if err != nil {
		logger.WarnContext(ctx, "remote fetch failed, using empty collection", "cache", c.name, "error", err)
		items = nil
	}
	if items == nil {
		items = []E{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.snapshot = slices.Clone(items)
		c.state = Resolved
	} else {
		logger.DebugContext(ctx, "discarding fetch from before reset", "cache", c.name)
	}
	return items
}

// Current returns the resolved snapshot in remote mode and the local
// collection otherwise. It never touches the network.
func (c *Cache[E]) Current() []E {
	if c.Remote() {
		c.mu.Lock()
		if c.state == Resolved {
			out := slices.Clone(c.snapshot)
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
	}
	return c.loadLocal()
}

// Mutate applies fn to the collection and returns the result.
//
// In remote mode the snapshot is resolved first (fetching if needed), fn is
// applied to it, and write is sent in the background. In local mode fn is
// applied to the local collection, which is written back; write is ignored.
func (c *Cache[E]) Mutate(ctx context.Context, fn func([]E) []E, write WriteFunc) []E {
	if !c.Remote() {
		c.mu.Lock()
		defer c.mu.Unlock()
		items := fn(c.loadLocal())
		if err := localstore.SaveJSON(c.local, c.key, items); err != nil {
			logger.WarnContext(ctx, "local write failed", "cache", c.name, "error", err)
		}
		return slices.Clone(items)
	}

	if c.State() != Resolved {
		c.FetchRemote(ctx)
	}

	c.mu.Lock()
	var out []E
	if c.state == Resolved {
		c.snapshot = fn(c.snapshot)
		out = slices.Clone(c.snapshot)
	} else {
		// reset or cancelled while resolving; the next read refetches
		out = fn(c.loadLocal())
	}
	c.mu.Unlock()

	if write != nil {
		c.send(ctx, write)
	}
	return out
}

func (c *Cache[E]) send(ctx context.Context, write WriteFunc) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.writeTimeout)
		defer cancel()
		if err := write(wctx); err != nil {
			logger.WarnContext(wctx, "remote write dropped", "cache", c.name, "error", err)
		}
	}()
}

// Wait blocks until background remote writes have finished.
func (c *Cache[E]) Wait() {
	c.pending.Wait()
}

// Reset forgets the snapshot so the next read fetches again. A fetch that
// is still in flight will not repopulate it.
func (c *Cache[E]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = Unknown
	c.snapshot = nil
}

// ClearLocal deletes the local collection.
func (c *Cache[E]) ClearLocal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local.Delete(c.key)
}

func (c *Cache[E]) loadLocal() []E {
	items := localstore.LoadJSON[[]E](c.local, c.key)
	if items == nil {
		items = []E{}
	}
	return items
}
