// Package search is the browse-page query engine: it filters a listing set
// by user criteria and orders the survivors by active featured boost.
package search

import "time"

// ListingStatus is the approval state of a listing.
type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

func ParseListingStatus(s string) (ListingStatus, bool) {
	switch ListingStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return ListingStatus(s), true
	default:
		return "", false
	}
}

// Listing is a sober-living property as served by /api/listings.
type Listing struct {
	ID              string        `json:"id"`
	ProviderID      int64         `json:"providerId,omitempty"`
	PropertyName    string        `json:"propertyName"`
	Description     string        `json:"description,omitempty"`
	Address         string        `json:"address,omitempty"`
	City            string        `json:"city"`
	State           string        `json:"state"`
	MonthlyPrice    *float64      `json:"monthlyPrice,omitempty"`
	Gender          string        `json:"gender,omitempty"`
	SupervisionType string        `json:"supervisionType,omitempty"`
	RoomType        string        `json:"roomType,omitempty"`
	IsMATFriendly   bool          `json:"isMatFriendly"`
	AcceptsCouples  bool          `json:"acceptsCouples"`
	Photos          []string      `json:"photos,omitempty"`
	HouseRules      string        `json:"houseRules,omitempty"`
	ContactEmail    string        `json:"contactEmail,omitempty"`
	ContactPhone    string        `json:"contactPhone,omitempty"`
	Status          ListingStatus `json:"status,omitempty"`
	CreatedAt       time.Time     `json:"createdAt,omitempty"`
	UpdatedAt       time.Time     `json:"updatedAt,omitempty"`
}

// FeaturedRecord is a time-bounded promotion of one listing.
type FeaturedRecord struct {
	ID         string    `json:"id,omitempty"`
	ListingID  string    `json:"listingId"`
	IsActive   bool      `json:"isActive"`
	StartDate  time.Time `json:"startDate,omitempty"`
	EndDate    time.Time `json:"endDate"`
	BoostLevel int       `json:"boostLevel"`
}

// Criteria are the browse filters. Empty slices and nil pointers impose no
// constraint.
type Criteria struct {
	Location           string   `json:"location,omitempty" url:"location,omitempty"`
	MaxPrice           *float64 `json:"maxPrice,omitempty" url:"max_price,omitempty"`
	Genders            []string `json:"genders,omitempty" url:"gender,omitempty"`
	SupervisionTypes   []string `json:"supervisionTypes,omitempty" url:"supervision,omitempty"`
	RoomTypes          []string `json:"roomTypes,omitempty" url:"room_type,omitempty"`
	MATFriendlyOnly    bool     `json:"matFriendlyOnly,omitempty" url:"mat_friendly,omitempty"`
	AcceptsCouplesOnly bool     `json:"acceptsCouplesOnly,omitempty" url:"accepts_couples,omitempty"`
}

// Boost is the featured state of one listing at evaluation time.
type Boost struct {
	Featured bool `json:"featured"`
	Level    int  `json:"level"`
}

// Result is a listing that survived filtering, annotated for the UI badge.
type Result struct {
	Listing
	Featured   bool `json:"isFeatured"`
	BoostLevel int  `json:"boostLevel"`
}
