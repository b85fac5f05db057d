package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an order record is not found.
var ErrNotFound = errors.New("order not found")

// ErrInvalidTransition is returned for an illegal status change.
var ErrInvalidTransition = errors.New("invalid order status transition")

// Repository provides operations on the orders table.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListByParticipant returns orders where the user is either the
	// customer or the business side, newest first.
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// CountByStatus recomputes the number of a business user's orders in
	// the given status from the current table state.
	CountByStatus(ctx context.Context, businessUserID uuid.UUID, status Status) (int, error)
}
