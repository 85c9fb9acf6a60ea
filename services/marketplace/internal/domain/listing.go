package domain

import (
	"strings"
	"time"

	"github.com/soberstay/marketplace/pkg/search"
)

type CreateListingRequest struct {
	PropertyName    string   `json:"propertyName" validate:"required,max=200"`
	Description     string   `json:"description" validate:"max=5000"`
	Address         string   `json:"address" validate:"required,max=300"`
	City            string   `json:"city" validate:"required,max=100"`
	State           string   `json:"state" validate:"required,max=64"`
	MonthlyPrice    *float64 `json:"monthlyPrice" validate:"omitempty,gte=0,lte=100000"`
	Gender          string   `json:"gender" validate:"max=40"`
	SupervisionType string   `json:"supervisionType" validate:"max=60"`
	RoomType        string   `json:"roomType" validate:"max=60"`
	IsMATFriendly   bool     `json:"isMatFriendly"`
	AcceptsCouples  bool     `json:"acceptsCouples"`
	Photos          []string `json:"photos" validate:"max=30,dive,url"`
	HouseRules      string   `json:"houseRules" validate:"max=5000"`
	ContactEmail    string   `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone    string   `json:"contactPhone" validate:"max=32"`
}

func (r *CreateListingRequest) Normalize() {
	r.PropertyName = strings.TrimSpace(r.PropertyName)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.ContactEmail = strings.ToLower(strings.TrimSpace(r.ContactEmail))
	r.ContactPhone = strings.TrimSpace(r.ContactPhone)
}

// Listing builds the pending listing a provider submits.
func (r *CreateListingRequest) Listing(providerID int64) search.Listing {
	return search.Listing{
		ProviderID:      providerID,
		PropertyName:    r.PropertyName,
		Description:     r.Description,
		Address:         r.Address,
		City:            r.City,
		State:           r.State,
		MonthlyPrice:    r.MonthlyPrice,
		Gender:          r.Gender,
		SupervisionType: r.SupervisionType,
		RoomType:        r.RoomType,
		IsMATFriendly:   r.IsMATFriendly,
		AcceptsCouples:  r.AcceptsCouples,
		Photos:          r.Photos,
		HouseRules:      r.HouseRules,
		ContactEmail:    r.ContactEmail,
		ContactPhone:    r.ContactPhone,
		Status:          search.StatusPending,
	}
}

type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

type ReviewRequest struct {
	Decision ReviewDecision `json:"decision" validate:"required,oneof=approve reject"`
	Note     string         `json:"note" validate:"max=2000"`
}

func (d ReviewDecision) Status() search.ListingStatus {
	if d == DecisionApprove {
		return search.StatusApproved
	}
	return search.StatusRejected
}

type CreateFeaturedRequest struct {
	ListingID  string     `json:"listingId" validate:"required,uuid"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    time.Time  `json:"endDate" validate:"required"`
	BoostLevel int        `json:"boostLevel" validate:"gte=0,lte=10"`
}

// ViewedHome is one row of a tenant's server-side viewing history.
type ViewedHome struct {
	PropertyID string    `json:"propertyId"`
	ViewedAt   time.Time `json:"viewedAt"`
}
