package srs

import "time"

// Card holds the scheduling state for a single item. The item's content is
// not the scheduler's concern; ID is an opaque identifier chosen by the
// caller.
type Card struct {
	ID         string     `json:"id"`
	State      State      `json:"state"`
	PriorState State      `json:"prior_state,omitempty"` // set only while Suspended.
	Step       *int       `json:"step"`                  // consecutive successes; nil when State=Review.
	Stability  *float64   `json:"stability"`             // nil before first review.
	Difficulty *float64   `json:"difficulty"`            // nil before first review.
	Due        time.Time  `json:"due"`
	LastReview *time.Time `json:"last_review"` // nil before first review.
	Lapses     uint32     `json:"lapses"`
}

// NewCard creates a card in the New state with the given ID.
// Due is set to now (immediately reviewable).
func NewCard(id string) Card {
	step := 0
	return Card{
		ID:    id,
		State: New,
		Step:  &step,
		Due:   time.Now(),
	}
}

// clone returns a deep copy of the card. Pointer fields are copied by value.
func (c Card) clone() Card {
	out := c
	if c.Step != nil {
		v := *c.Step
		out.Step = &v
	}
	if c.Stability != nil {
		v := *c.Stability
		out.Stability = &v
	}
	if c.Difficulty != nil {
		v := *c.Difficulty
		out.Difficulty = &v
	}
	if c.LastReview != nil {
		v := *c.LastReview
		out.LastReview = &v
	}
	return out
}

func (c *Card) setStability(s float64) {
	c.Stability = &s
}

func (c *Card) setDifficulty(d float64) {
	c.Difficulty = &d
}

func (c *Card) setStep(step int) {
	c.Step = &step
}

func (c *Card) clearStep() {
	c.Step = nil
}
