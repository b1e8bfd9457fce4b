// Package intimacy maintains the bounded relationship score between a user
// and the assistant, and classifies it into relationship tiers.
package intimacy

import (
	"context"

	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// Tier is a relationship stage derived from the intimacy score.
type Tier string

// Relationship tiers in ascending order.
const (
	TierNew        Tier = "new"
	TierAcquainted Tier = "acquainted"
	TierClose      Tier = "close"
	TierIntimate   Tier = "intimate"
)

// Tier score boundaries.
const (
	acquaintedMin = 20.0
	closeMin      = 40.0
	intimateMin   = 70.0
)

// TierOf classifies a score into its relationship tier.
func TierOf(score float64) Tier {
	switch {
	case score >= intimateMin:
		return TierIntimate
	case score >= closeMin:
		return TierClose
	case score >= acquaintedMin:
		return TierAcquainted
	default:
		return TierNew
	}
}

// AtLeast reports whether the tier is at or above the given tier.
func (t Tier) AtLeast(other Tier) bool {
	return tierRank(t) >= tierRank(other)
}

func tierRank(t Tier) int {
	switch t {
	case TierIntimate:
		return 3
	case TierClose:
		return 2
	case TierAcquainted:
		return 1
	default:
		return 0
	}
}

// Tracker reads and advances a user's intimacy score through an
// IntimacyStore. The score only ever grows and is clamped at 100 by the
// store.
type Tracker struct {
	store storage.IntimacyStore
}

// NewTracker creates a tracker backed by the given store.
func NewTracker(store storage.IntimacyStore) *Tracker {
	return &Tracker{store: store}
}

// Get returns the user's current score. Users with no history get a
// zero-valued score.
func (t *Tracker) Get(ctx context.Context, userID string) (*storage.IntimacyScore, error) {
	return t.store.GetIntimacy(ctx, userID)
}

// Update adds delta to the user's score and returns the result. Negative
// deltas are ignored: the score never decreases.
func (t *Tracker) Update(ctx context.Context, userID string, delta float64) (*storage.IntimacyScore, error) {
	if delta < 0 {
		delta = 0
	}
	return t.store.UpdateIntimacy(ctx, userID, delta)
}

// TierFor returns the user's current relationship tier.
func (t *Tracker) TierFor(ctx context.Context, userID string) (Tier, error) {
	score, err := t.Get(ctx, userID)
	if err != nil {
		return TierNew, err
	}
	return TierOf(score.Score), nil
}
