// Package stats computes platform-wide aggregates. Every call recomputes
// from the current store state; nothing is cached, so results always
// reflect the latest committed writes.
package stats

import (
	"context"
	"fmt"
	"math"

	"github.com/knostijr/BE-coderr/internal/permission"
)

// BaseInfo holds the public platform statistics.
type BaseInfo struct {
	ReviewCount          int
	AverageRating        float64
	BusinessProfileCount int
	OfferCount           int
}

// OfferCounter is the slice of the offer repository the aggregator reads.
type OfferCounter interface {
	CountAll(ctx context.Context) (int, error)
}

// ReviewSource is the slice of the review repository the aggregator reads.
type ReviewSource interface {
	AverageRating(ctx context.Context) (float64, int, error)
}

// ProfileCounter is the slice of the account repository the aggregator reads.
type ProfileCounter interface {
	CountByRole(ctx context.Context, role permission.Role) (int, error)
}

// Aggregator computes BaseInfo from the resource store.
type Aggregator struct {
	offers   OfferCounter
	reviews  ReviewSource
	accounts ProfileCounter
}

// NewAggregator creates a new Aggregator over the given sources.
func NewAggregator(offers OfferCounter, reviews ReviewSource, accounts ProfileCounter) *Aggregator {
	return &Aggregator{offers: offers, reviews: reviews, accounts: accounts}
}

// BaseInfo returns the current platform statistics. The average rating is
// rounded to one decimal place and is 0 when no reviews exist.
func (a *Aggregator) BaseInfo(ctx context.Context) (*BaseInfo, error) {
	avg, reviewCount, err := a.reviews.AverageRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating reviews: %w", err)
	}

	offerCount, err := a.offers.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting offers: %w", err)
	}

	businessCount, err := a.accounts.CountByRole(ctx, permission.RoleBusiness)
	if err != nil {
		return nil, fmt.Errorf("counting business profiles: %w", err)
	}

	return &BaseInfo{
		ReviewCount:          reviewCount,
		AverageRating:        math.Round(avg*10) / 10,
		BusinessProfileCount: businessCount,
		OfferCount:           offerCount,
	}, nil
}
