package validation

import (
	"net/mail"
	"regexp"

	"github.com/knostijr/BE-coderr/internal/permission"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,150}$`)

// RegistrationRequest mirrors the fields needed for registration validation.
type RegistrationRequest struct {
	Username         string
	Email            string
	Password         string
	RepeatedPassword string
	Type             string
}

// ValidateRegistration validates a registration request. Only customer and
// business accounts can be self-registered.
func ValidateRegistration(req RegistrationRequest) []FieldError {
	var errs []FieldError

	if req.Username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "username is required"})
	} else if !usernameRegex.MatchString(req.Username) {
		errs = append(errs, FieldError{Field: "username", Message: "username must be 3-150 characters of letters, digits, dots, hyphens or underscores"})
	}

	if req.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	if len(req.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	} else if req.Password != req.RepeatedPassword {
		errs = append(errs, FieldError{Field: "password", Message: "password fields didn't match"})
	}

	switch permission.Role(req.Type) {
	case permission.RoleCustomer, permission.RoleBusiness:
	default:
		errs = append(errs, FieldError{Field: "type", Message: "type must be customer or business"})
	}

	return errs
}

// ValidateLogin validates a login request.
func ValidateLogin(username, password string) []FieldError {
	var errs []FieldError

	if username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "username is required"})
	}
	if password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}
