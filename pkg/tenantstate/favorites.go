package tenantstate

import (
	"context"
	"slices"

	"github.com/soberstay/marketplace/pkg/dualcache"
	"github.com/soberstay/marketplace/pkg/localstore"
)

// Favorites is the set of saved listing ids.
type Favorites struct {
	cache  *dualcache.Cache[string]
	remote Remote
}

func NewFavorites(cfg Config) *Favorites {
	f := &Favorites{remote: cfg.Remote}
	var fetch dualcache.FetchFunc[string]
	if cfg.Remote != nil {
		fetch = cfg.Remote.ListFavorites
	}
	f.cache = dualcache.New(dualcache.Config[string]{
		Name:         "favorites",
		Key:          localstore.KeyFavorites,
		Local:        cfg.Local,
		Fetch:        fetch,
		RemoteActive: cfg.remoteActive,
		WriteTimeout: cfg.WriteTimeout,
	})
	return f
}

// Fetch resolves the remote set if needed and returns it.
func (f *Favorites) Fetch(ctx context.Context) []string {
	return f.cache.FetchRemote(ctx)
}

// IDs returns the current set without touching the network.
func (f *Favorites) IDs() []string {
	return f.cache.Current()
}

func (f *Favorites) IsFavorite(listingID string) bool {
	return slices.Contains(f.cache.Current(), listingID)
}

// Add saves listingID. Adding a saved id leaves the set unchanged.
func (f *Favorites) Add(ctx context.Context, listingID string) []string {
	return f.cache.Mutate(ctx, addID(listingID), func(ctx context.Context) error {
		return f.remote.AddFavorite(ctx, listingID)
	})
}

// Remove drops listingID. Removing an absent id is a no-op.
func (f *Favorites) Remove(ctx context.Context, listingID string) []string {
	return f.cache.Mutate(ctx, removeID(listingID), func(ctx context.Context) error {
		return f.remote.RemoveFavorite(ctx, listingID)
	})
}

// Toggle flips membership of listingID and reports whether it is now saved.
func (f *Favorites) Toggle(ctx context.Context, listingID string) bool {
	var added bool
	f.cache.Mutate(ctx, func(ids []string) []string {
		if slices.Contains(ids, listingID) {
			return removeID(listingID)(ids)
		}
		added = true
		return append(ids, listingID)
	}, func(ctx context.Context) error {
		if added {
			return f.remote.AddFavorite(ctx, listingID)
		}
		return f.remote.RemoveFavorite(ctx, listingID)
	})
	return added
}

func (f *Favorites) Reset() { f.cache.Reset() }

// Wait blocks until pending remote writes have finished.
func (f *Favorites) Wait() { f.cache.Wait() }

func addID(id string) func([]string) []string {
	return func(ids []string) []string {
		if slices.Contains(ids, id) {
			return ids
		}
		return append(ids, id)
	}
}

func removeID(id string) func([]string) []string {
	return func(ids []string) []string {
		return slices.DeleteFunc(ids, func(v string) bool { return v == id })
	}
}
