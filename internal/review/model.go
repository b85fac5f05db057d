package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's rating of a business user. At most one review
// exists per (reviewer, business user) pair, enforced by a unique
// constraint in the store.
type Review struct {
	ID             uuid.UUID
	BusinessUserID uuid.UUID
	ReviewerID     uuid.UUID
	Rating         int
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Patch holds reviewer-updatable fields. The business user target is
// create-only and cannot be reassigned.
type Patch struct {
	Rating      *int
	Description *string
}

// ListFilter holds optional exact-match filters and ordering for listing reviews.
type ListFilter struct {
	BusinessUserID *uuid.UUID
	ReviewerID     *uuid.UUID
	Ordering       string // updated_at | -updated_at | rating | -rating
}
