package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/knostijr/BE-coderr/internal/offer"
)

// Status is an order's lifecycle state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	return s == StatusInProgress || s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
// The only legal transitions are in_progress -> completed and
// in_progress -> cancelled; both targets are terminal.
func CanTransition(from, to Status) bool {
	if from != StatusInProgress {
		return false
	}
	return to == StatusCompleted || to == StatusCancelled
}

// Order is a customer's purchase of one offer package. The package fields
// (title, tier, price, delivery time, revisions, features) are copied at
// creation time; later offer edits never propagate to an existing order.
type Order struct {
	ID                 uuid.UUID
	CustomerID         uuid.UUID
	BusinessUserID     uuid.UUID
	OfferDetailID      uuid.UUID
	Title              string
	Tier               offer.Tier
	Price              float64
	DeliveryTimeInDays int
	Revisions          int
	Features           []string
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewFromDetail builds the immutable order snapshot from an offer detail
// and the owning offer's business user.
func NewFromDetail(customerID, businessUserID uuid.UUID, d *offer.Detail) *Order {
	return &Order{
		CustomerID:         customerID,
		BusinessUserID:     businessUserID,
		OfferDetailID:      d.ID,
		Title:              d.Title,
		Tier:               d.Tier,
		Price:              d.Price,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Revisions:          d.Revisions,
		Features:           d.Features,
		Status:             StatusInProgress,
	}
}
