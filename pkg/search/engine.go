package search

import (
	"slices"
	"strings"
	"time"
)

// IsCurrentlyFeatured reports whether r is active and ends strictly after now.
func IsCurrentlyFeatured(r FeaturedRecord, now time.Time) bool {
	return r.IsActive && r.EndDate.After(now)
}

// FeaturedIndex maps listing id to its boost, keeping only records that are
// currently featured. When several active records name the same listing the
// highest boost level wins.
func FeaturedIndex(featured []FeaturedRecord, now time.Time) map[string]Boost {
	idx := make(map[string]Boost, len(featured))
	for _, r := range featured {
		if !IsCurrentlyFeatured(r, now) {
			continue
		}
		prev, seen := idx[r.ListingID]
		if seen && prev.Level >= r.BoostLevel {
			continue
		}
		idx[r.ListingID] = Boost{Featured: true, Level: r.BoostLevel}
	}
	return idx
}

// Matches applies every criterion to l.
func Matches(l Listing, c Criteria) bool {
	if q := strings.ToLower(c.Location); q != "" {
		if !strings.Contains(strings.ToLower(l.City), q) &&
			!strings.Contains(strings.ToLower(l.State), q) &&
			!strings.Contains(strings.ToLower(l.PropertyName), q) {
			return false
		}
	}

	if c.MaxPrice != nil {
		if l.MonthlyPrice == nil || *l.MonthlyPrice > *c.MaxPrice {
			return false
		}
	}

	if !memberOf(c.Genders, l.Gender) ||
		!memberOf(c.SupervisionTypes, l.SupervisionType) ||
		!memberOf(c.RoomTypes, l.RoomType) {
		return false
	}

	if c.MATFriendlyOnly && !l.IsMATFriendly {
		return false
	}
	if c.AcceptsCouplesOnly && !l.AcceptsCouples {
		return false
	}
	return true
}

// memberOf is true when set is empty or contains v.
func memberOf(set []string, v string) bool {
	return len(set) == 0 || slices.Contains(set, v)
}

// Run filters listings by c and orders them by descending boost level.
// Equal boosts keep their input order.
func Run(listings []Listing, featured []FeaturedRecord, c Criteria, now time.Time) []Result {
	idx := FeaturedIndex(featured, now)

	out := make([]Result, 0, len(listings))
	for _, l := range listings {
		if !Matches(l, c) {
			continue
		}
		b := idx[l.ID]
		out = append(out, Result{Listing: l, Featured: b.Featured, BoostLevel: b.Level})
	}

	slices.SortStableFunc(out, func(a, b Result) int {
		return b.BoostLevel - a.BoostLevel
	})
	return out
}

// IDs returns the listing ids of results in order.
func IDs(results []Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}
