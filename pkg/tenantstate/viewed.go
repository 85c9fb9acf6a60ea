package tenantstate

import (
	"context"
	"slices"

	"github.com/soberstay/marketplace/pkg/api"
	"github.com/soberstay/marketplace/pkg/dualcache"
	"github.com/soberstay/marketplace/pkg/localstore"
)

// MaxLocalViewed bounds the locally stored history. The server-backed
// history has no bound.
const MaxLocalViewed = 50

type ViewedHome = api.ViewedHome

// ViewedHomes is the most-recent-first viewing history.
type ViewedHomes struct {
	cfg    Config
	cache  *dualcache.Cache[ViewedHome]
	remote Remote
}

func NewViewedHomes(cfg Config) *ViewedHomes {
	v := &ViewedHomes{cfg: cfg, remote: cfg.Remote}
	var fetch dualcache.FetchFunc[ViewedHome]
	if cfg.Remote != nil {
		fetch = cfg.Remote.ListViewedHomes
	}
	v.cache = dualcache.New(dualcache.Config[ViewedHome]{
		Name:         "viewed_homes",
		Key:          localstore.KeyViewedHomes,
		Local:        cfg.Local,
		Fetch:        fetch,
		RemoteActive: cfg.remoteActive,
		WriteTimeout: cfg.WriteTimeout,
	})
	return v
}

func (v *ViewedHomes) Fetch(ctx context.Context) []ViewedHome {
	return v.cache.FetchRemote(ctx)
}

func (v *ViewedHomes) List() []ViewedHome {
	return v.cache.Current()
}

// Record notes a view of propertyID. A first view goes to the front; a
// repeat view changes nothing.
func (v *ViewedHomes) Record(ctx context.Context, propertyID string) []ViewedHome {
	capped := !v.cache.Remote()
	now := v.cfg.now().UTC()
	return v.cache.Mutate(ctx, func(views []ViewedHome) []ViewedHome {
		if slices.ContainsFunc(views, func(e ViewedHome) bool { return e.PropertyID == propertyID }) {
			return views
		}
		views = slices.Insert(views, 0, ViewedHome{PropertyID: propertyID, ViewedAt: now})
		if capped && len(views) > MaxLocalViewed {
			views = views[:MaxLocalViewed]
		}
		return views
	}, func(ctx context.Context) error {
		return v.remote.RecordView(ctx, propertyID)
	})
}

func (v *ViewedHomes) Reset() { v.cache.Reset() }

func (v *ViewedHomes) Wait() { v.cache.Wait() }
