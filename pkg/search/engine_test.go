package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRunMaxPrice(t *testing.T) {
	listings := []Listing{
		{ID: "1", City: "Austin", State: "TX", MonthlyPrice: price(900), Gender: "Men"},
		{ID: "2", City: "Dallas", State: "TX", MonthlyPrice: price(2200), Gender: "Women"},
	}

	got := Run(listings, nil, Criteria{MaxPrice: price(1000)}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.False(t, got[0].Featured)
}

func TestRunMaxPriceInclusive(t *testing.T) {
	listings := []Listing{{ID: "1", MonthlyPrice: price(1000)}}
	assert.Len(t, Run(listings, nil, Criteria{MaxPrice: price(1000)}, now), 1)
}

func TestRunMissingPriceFailsCeiling(t *testing.T) {
	listings := []Listing{{ID: "1"}, {ID: "2", MonthlyPrice: price(10)}}
	assert.Equal(t, []string{"2"}, IDs(Run(listings, nil, Criteria{MaxPrice: price(500)}, now)))
	assert.Equal(t, []string{"1", "2"}, IDs(Run(listings, nil, Criteria{}, now)))
}

func TestRunFeaturedBoostOrdering(t *testing.T) {
	listings := []Listing{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	featured := []FeaturedRecord{
		{ListingID: "2", IsActive: true, EndDate: now.Add(24 * time.Hour), BoostLevel: 5},
		{ListingID: "3", IsActive: true, EndDate: now.Add(24 * time.Hour), BoostLevel: 1},
	}

	got := Run(listings, featured, Criteria{}, now)
	assert.Equal(t, []string{"2", "3", "1"}, IDs(got))
	assert.True(t, got[0].Featured)
	assert.Equal(t, 5, got[0].BoostLevel)
	assert.False(t, got[2].Featured)
}

func TestRunTiesKeepInputOrder(t *testing.T) {
	listings := []Listing{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	featured := []FeaturedRecord{
		{ListingID: "c", IsActive: true, EndDate: now.Add(time.Hour), BoostLevel: 2},
		{ListingID: "d", IsActive: true, EndDate: now.Add(time.Hour), BoostLevel: 2},
	}
	assert.Equal(t, []string{"c", "d", "a", "b"}, IDs(Run(listings, featured, Criteria{}, now)))
}

func TestExpiredOrInactiveFeaturedIgnored(t *testing.T) {
	listings := []Listing{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	featured := []FeaturedRecord{
		{ListingID: "3", IsActive: true, EndDate: now.Add(-time.Minute), BoostLevel: 9},
		{ListingID: "2", IsActive: false, EndDate: now.Add(time.Hour), BoostLevel: 9},
		{ListingID: "1", IsActive: true, EndDate: now, BoostLevel: 9},
	}

	got := Run(listings, featured, Criteria{}, now)
	assert.Equal(t, []string{"1", "2", "3"}, IDs(got))
	for _, r := range got {
		assert.False(t, r.Featured, r.ID)
		assert.Zero(t, r.BoostLevel, r.ID)
	}
}

func TestFeaturedIndexUnknownListingAndMaxBoost(t *testing.T) {
	featured := []FeaturedRecord{
		{ListingID: "ghost", IsActive: true, EndDate: now.Add(time.Hour), BoostLevel: 3},
		{ListingID: "1", IsActive: true, EndDate: now.Add(time.Hour), BoostLevel: 1},
		{ListingID: "1", IsActive: true, EndDate: now.Add(time.Hour), BoostLevel: 4},
		{ListingID: "1", IsActive: true, EndDate: now.Add(time.Hour), BoostLevel: 2},
	}
	idx := FeaturedIndex(featured, now)
	assert.Equal(t, Boost{Featured: true, Level: 4}, idx["1"])

	got := Run([]Listing{{ID: "1"}}, featured, Criteria{}, now)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].BoostLevel)
}

func TestFeaturedDefaultBoostZero(t *testing.T) {
	featured := []FeaturedRecord{{ListingID: "2", IsActive: true, EndDate: now.Add(time.Hour)}}
	got := Run([]Listing{{ID: "1"}, {ID: "2"}}, featured, Criteria{}, now)
	assert.Equal(t, []string{"1", "2"}, IDs(got))
	assert.True(t, got[1].Featured)
}

func TestLocationQuery(t *testing.T) {
	listings := []Listing{
		{ID: "1", City: "Austin", State: "TX", PropertyName: "Hill House"},
		{ID: "2", City: "Denver", State: "CO", PropertyName: "Austin Street Home"},
		{ID: "3", City: "Boulder", State: "CO", PropertyName: "Pine"},
	}

	cases := []struct {
		query string
		want  []string
	}{
		{"austin", []string{"1", "2"}},
		{"co", []string{"2", "3"}},
		{"Austin ", []string{"2"}},
		{" ", []string{"1", "2"}},
		{"hill", []string{"1"}},
		{"nowhere", []string{}},
		{"", []string{"1", "2", "3"}},
	}
	for _, tc := range cases {
		got := IDs(Run(listings, nil, Criteria{Location: tc.query}, now))
		assert.Equal(t, tc.want, got, "query %q", tc.query)
	}
}

func TestCategoricalFilters(t *testing.T) {
	listings := []Listing{
		{ID: "1", Gender: "Men", SupervisionType: "Level 2", RoomType: "Shared", IsMATFriendly: true},
		{ID: "2", Gender: "Women", SupervisionType: "Level 3", RoomType: "Private", AcceptsCouples: true},
		{ID: "3", Gender: "Co-ed", SupervisionType: "Level 2", RoomType: "Private", IsMATFriendly: true, AcceptsCouples: true},
		{ID: "4"},
	}

	cases := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"gender or", Criteria{Genders: []string{"Men", "Women"}}, []string{"1", "2"}},
		{"supervision", Criteria{SupervisionTypes: []string{"Level 2"}}, []string{"1", "3"}},
		{"room", Criteria{RoomTypes: []string{"Private"}}, []string{"2", "3"}},
		{"mat", Criteria{MATFriendlyOnly: true}, []string{"1", "3"}},
		{"couples", Criteria{AcceptsCouplesOnly: true}, []string{"2", "3"}},
		{"and across filters", Criteria{RoomTypes: []string{"Private"}, MATFriendlyOnly: true}, []string{"3"}},
		{"missing field fails", Criteria{Genders: []string{"Men", "Women", "Co-ed"}}, []string{"1", "2", "3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IDs(Run(listings, nil, tc.c, now)))
		})
	}
}

func TestRunEmpty(t *testing.T) {
	got := Run(nil, nil, Criteria{}, now)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseListingStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected"} {
		_, ok := ParseListingStatus(s)
		assert.True(t, ok, s)
	}
	_, ok := ParseListingStatus("live")
	assert.False(t, ok)
}
