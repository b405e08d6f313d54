package srs

import "time"

// ReviewLog records a single review event for an item. Entries are
// append-only and immutable; the accumulated log is the sole input to
// parameter optimization.
//
// The *Before fields are nil on an item's first review, when no prior
// memory state exists; PredictedRetrievability is 1.0 there by definition.
type ReviewLog struct {
	ItemID                  string    `json:"item_id"`
	Rating                  Rating    `json:"rating"`
	ReviewedAt              time.Time `json:"reviewed_at"`
	ElapsedDays             float64   `json:"elapsed_days"`
	StabilityBefore         *float64  `json:"stability_before,omitempty"`
	StabilityAfter          float64   `json:"stability_after"`
	DifficultyBefore        *float64  `json:"difficulty_before,omitempty"`
	DifficultyAfter         float64   `json:"difficulty_after"`
	PredictedRetrievability float64   `json:"predicted_retrievability"`
	ReviewDuration          *int      `json:"review_duration,omitempty"` // milliseconds, optional.
}
