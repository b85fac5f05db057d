package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a review record is not found.
var ErrNotFound = errors.New("review not found")

// ErrDuplicateReview is returned when the reviewer has already reviewed
// this business user. The check-then-insert race is settled by the store's
// unique constraint: of two concurrent attempts exactly one succeeds.
var ErrDuplicateReview = errors.New("business user already reviewed")

// Repository provides operations on the reviews table.
type Repository interface {
	Create(ctx context.Context, rv *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	List(ctx context.Context, filter ListFilter) ([]Review, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountAll(ctx context.Context) (int, error)
	// AverageRating returns the mean rating across all reviews and the
	// review count; zero average when there are none.
	AverageRating(ctx context.Context) (float64, int, error)
}
