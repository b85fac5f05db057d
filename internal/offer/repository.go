package offer

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an offer record is not found.
var ErrNotFound = errors.New("offer not found")

// ErrDetailNotFound is returned when an offer detail record is not found.
var ErrDetailNotFound = errors.New("offer detail not found")

// Repository provides operations on the offers and offer_details tables.
// Create and Update persist the offer and its detail set atomically.
type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Offer, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Offer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetDetailByID(ctx context.Context, id uuid.UUID) (*Detail, error)
	CountAll(ctx context.Context) (int, error)
}
