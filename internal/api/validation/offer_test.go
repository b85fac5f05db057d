package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knostijr/BE-coderr/internal/api/validation"
	"github.com/knostijr/BE-coderr/internal/offer"
)

func validDetail(tier offer.Tier) offer.Detail {
	return offer.Detail{
		Tier:               tier,
		Title:              "Package",
		Price:              100,
		DeliveryTimeInDays: 5,
		Revisions:          3,
	}
}

func TestValidateOffer_Valid(t *testing.T) {
	t.Parallel()

	errs := validation.ValidateOffer(validation.OfferRequest{
		Title:   "Logo Design",
		Details: []offer.Detail{validDetail(offer.TierBasic), validDetail(offer.TierStandard), validDetail(offer.TierPremium)},
	})
	assert.Empty(t, errs)
}

func TestValidateOffer_SingleDetailIsEnough(t *testing.T) {
	t.Parallel()

	errs := validation.ValidateOffer(validation.OfferRequest{
		Title:   "Logo Design",
		Details: []offer.Detail{validDetail(offer.TierBasic)},
	})
	assert.Empty(t, errs)
}

func TestValidateOffer_NoDetails(t *testing.T) {
	t.Parallel()

	errs := validation.ValidateOffer(validation.OfferRequest{Title: "Logo Design"})
	assert.Len(t, errs, 1)
	assert.Equal(t, "details", errs[0].Field)
}

func TestValidateOffer_TooManyDetails(t *testing.T) {
	t.Parallel()

	errs := validation.ValidateOffer(validation.OfferRequest{
		Title: "Logo Design",
		Details: []offer.Detail{
			validDetail(offer.TierBasic), validDetail(offer.TierStandard),
			validDetail(offer.TierPremium), validDetail(offer.TierBasic),
		},
	})
	assert.Len(t, errs, 1)
	assert.Equal(t, "details", errs[0].Field)
}

func TestValidateOffer_DuplicateTiers(t *testing.T) {
	t.Parallel()

	errs := validation.ValidateOffer(validation.OfferRequest{
		Title:   "Logo Design",
		Details: []offer.Detail{validDetail(offer.TierBasic), validDetail(offer.TierBasic)},
	})
	assert.NotEmpty(t, errs)
	assert.Equal(t, "details[1].offer_type", errs[0].Field)
}

func TestValidateOffer_FieldConstraints(t *testing.T) {
	t.Parallel()

	d := validDetail(offer.TierBasic)
	d.Price = 0
	d.DeliveryTimeInDays = -1
	d.Revisions = -2
	d.Title = ""

	errs := validation.ValidateOffer(validation.OfferRequest{
		Title:   "Logo Design",
		Details: []offer.Detail{d},
	})

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "details[0].title")
	assert.Contains(t, fields, "details[0].price")
	assert.Contains(t, fields, "details[0].delivery_time_in_days")
	assert.Contains(t, fields, "details[0].revisions")
}

func TestValidateOffer_UnlimitedRevisionsAllowed(t *testing.T) {
	t.Parallel()

	d := validDetail(offer.TierBasic)
	d.Revisions = offer.UnlimitedRevisions

	errs := validation.ValidateOffer(validation.OfferRequest{Title: "Logo Design", Details: []offer.Detail{d}})
	assert.Empty(t, errs)
}

func TestValidateOffer_MissingTitle(t *testing.T) {
	t.Parallel()

	errs := validation.ValidateOffer(validation.OfferRequest{
		Details: []offer.Detail{validDetail(offer.TierBasic)},
	})
	assert.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)
}

func TestValidateOfferPatch_EmptyIsValid(t *testing.T) {
	t.Parallel()

	assert.Empty(t, validation.ValidateOfferPatch(nil))
}

func TestValidateOfferPatch_BadTier(t *testing.T) {
	t.Parallel()

	d := validDetail(offer.Tier("deluxe"))
	errs := validation.ValidateOfferPatch([]offer.Detail{d})
	assert.NotEmpty(t, errs)
	assert.Equal(t, "details[0].offer_type", errs[0].Field)
}
