package offer

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a package tier label within an offer.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ValidTier reports whether t is one of the three known tier labels.
func ValidTier(t Tier) bool {
	return t == TierBasic || t == TierStandard || t == TierPremium
}

// UnlimitedRevisions marks a package with no revision cap.
const UnlimitedRevisions = -1

// Detail is one priced package tier within an offer. Its lifecycle is bound
// to the parent: details are written only as part of an offer write.
type Detail struct {
	ID                 uuid.UUID
	OfferID            uuid.UUID
	Tier               Tier
	Title              string
	Price              float64
	DeliveryTimeInDays int
	Revisions          int
	Features           []string
}

// Offer is a published service listing owned by a business user. MinPrice
// and MinDeliveryTime are derived from Details on every read and are never
// stored independently.
type Offer struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	OwnerUsername string
	OwnerFirst    string
	OwnerLast     string
	Title         string
	Description   string
	Details       []Detail
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MinPrice returns the minimum price across the offer's packages.
func (o *Offer) MinPrice() float64 {
	min := 0.0
	for i, d := range o.Details {
		if i == 0 || d.Price < min {
			min = d.Price
		}
	}
	return min
}

// MinDeliveryTime returns the minimum delivery time in days across the
// offer's packages.
func (o *Offer) MinDeliveryTime() int {
	min := 0
	for i, d := range o.Details {
		if i == 0 || d.DeliveryTimeInDays < min {
			min = d.DeliveryTimeInDays
		}
	}
	return min
}

// Patch holds owner-updatable offer fields. Details are replaced
// individually, matched by tier label; nil fields are not updated.
type Patch struct {
	Title       *string
	Description *string
	Details     []Detail
}

// ListFilter holds optional filters and pagination for listing offers.
type ListFilter struct {
	CreatorID       *uuid.UUID
	MinPrice        *float64 // offer has at least one package priced >= value
	MaxDeliveryTime *int     // offer has at least one package delivered in <= value days
	Search          *string  // substring over title + description
	Ordering        string   // updated_at | -updated_at | min_price | -min_price
	Page            int      // default 1
	Limit           int      // default 20
}

// ListResult holds the result of a paginated list query.
type ListResult struct {
	Offers []Offer
	Total  int
	Page   int
	Limit  int
}
