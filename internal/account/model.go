package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/knostijr/BE-coderr/internal/permission"
)

// User represents a row in the users table. Profile display fields
// default to the empty string rather than NULL.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         permission.Role
	FirstName    string
	LastName     string
	Location     string
	Tel          string
	Description  string
	WorkingHours string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the permission-layer view of this user.
func (u *User) Principal() permission.Principal {
	return permission.Principal{ID: u.ID, Role: u.Role, Authenticated: true}
}

// ProfilePatch holds owner-updatable profile fields. Nil fields are not updated.
type ProfilePatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Location     *string
	Tel          *string
	Description  *string
	WorkingHours *string
}
