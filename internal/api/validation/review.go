package validation

// ValidateRating checks that a rating lies in the 1..5 range.
func ValidateRating(rating int) []FieldError {
	if rating < 1 || rating > 5 {
		return []FieldError{{Field: "rating", Message: "rating must be between 1 and 5"}}
	}
	return nil
}
