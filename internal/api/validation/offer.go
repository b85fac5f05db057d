package validation

import (
	"fmt"

	"github.com/knostijr/BE-coderr/internal/offer"
)

// OfferRequest mirrors the fields needed for offer validation.
type OfferRequest struct {
	Title       string
	Description string
	Details     []offer.Detail
}

// ValidateOffer validates an offer create request: title present, 1 to 3
// packages, distinct tier labels, and per-package constraints.
func ValidateOffer(req OfferRequest) []FieldError {
	var errs []FieldError

	if req.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}

	if len(req.Details) < 1 || len(req.Details) > 3 {
		errs = append(errs, FieldError{Field: "details", Message: "an offer must have between 1 and 3 packages"})
		return errs
	}

	errs = append(errs, validateDetails(req.Details)...)
	return errs
}

// ValidateOfferPatch validates the detail entries of an offer update.
// Absent fields stay untouched, so only the supplied details are checked.
func ValidateOfferPatch(details []offer.Detail) []FieldError {
	if len(details) > 3 {
		return []FieldError{{Field: "details", Message: "an offer must have between 1 and 3 packages"}}
	}
	return validateDetails(details)
}

func validateDetails(details []offer.Detail) []FieldError {
	var errs []FieldError

	seen := make(map[offer.Tier]bool, len(details))
	for i, d := range details {
		field := func(name string) string { return fmt.Sprintf("details[%d].%s", i, name) }

		if !offer.ValidTier(d.Tier) {
			errs = append(errs, FieldError{Field: field("offer_type"), Message: "offer_type must be basic, standard or premium"})
		} else if seen[d.Tier] {
			errs = append(errs, FieldError{Field: field("offer_type"), Message: fmt.Sprintf("duplicate %s package", d.Tier)})
		}
		seen[d.Tier] = true

		if d.Title == "" {
			errs = append(errs, FieldError{Field: field("title"), Message: "title is required"})
		}
		if d.Price <= 0 {
			errs = append(errs, FieldError{Field: field("price"), Message: "price must be greater than 0"})
		}
		if d.DeliveryTimeInDays <= 0 {
			errs = append(errs, FieldError{Field: field("delivery_time_in_days"), Message: "delivery_time_in_days must be greater than 0"})
		}
		if d.Revisions < offer.UnlimitedRevisions {
			errs = append(errs, FieldError{Field: field("revisions"), Message: "revisions must be -1 (unlimited) or greater"})
		}
	}

	return errs
}
