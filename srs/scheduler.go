package srs

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// SchedulerConfig configures a Scheduler.
// Zero values produce sensible defaults; see field comments.
type SchedulerConfig struct {
	Parameters       Parameters `json:"parameters"`        // zero → DefaultParameters
	DesiredRetention float64    `json:"desired_retention"` // zero → 0.9
	MinimumInterval  int        `json:"minimum_interval"`  // zero → 1 day
	MaximumInterval  int        `json:"maximum_interval"`  // zero → 36500 days
	LearningSteps    int        `json:"learning_steps"`    // zero → 2 successes to graduate Learning
	RelearningSteps  int        `json:"relearning_steps"`  // zero → 1 success to graduate Relearning
	DisableFuzzing   bool       `json:"disable_fuzzing"`   // zero false → fuzz enabled
	FuzzSeed         int64      `json:"fuzz_seed"`         // zero → time-seeded
}

// Scheduler owns the Card state for a set of items and applies the memory
// model on every graded review. The per-item transition is the sole
// mutating operation; a mutex serializes it, so grading different items
// from different goroutines is safe.
type Scheduler struct {
	mu               sync.Mutex
	model            Model
	desiredRetention float64
	minimumInterval  int
	maximumInterval  int
	learningSteps    int
	relearningSteps  int
	disableFuzzing   bool
	rng              *rand.Rand
	items            map[string]Card
	logs             []ReviewLog
}

// NewScheduler creates a Scheduler from the given config.
// Zero-value fields are filled with defaults; invalid values return an error.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	// Parameters: zero array → defaults.
	params := cfg.Parameters
	if params == (Parameters{}) {
		params = DefaultParameters
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// DesiredRetention: zero → 0.9.
	dr := cfg.DesiredRetention
	if dr == 0 {
		dr = 0.9
	}
	if dr <= 0 || dr > 1 {
		return nil, fmt.Errorf("srs: desired retention %f out of range (0, 1]", dr)
	}

	// MinimumInterval: zero → 1. MaximumInterval: zero → 36500.
	minIvl := cfg.MinimumInterval
	if minIvl == 0 {
		minIvl = 1
	}
	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = 36500
	}
	if minIvl < 1 || maxIvl < minIvl {
		return nil, fmt.Errorf("srs: interval bounds [%d, %d] invalid", minIvl, maxIvl)
	}

	// Graduation thresholds: zero → 2 (Learning), 1 (Relearning).
	ls := cfg.LearningSteps
	if ls == 0 {
		ls = 2
	}
	rs := cfg.RelearningSteps
	if rs == 0 {
		rs = 1
	}
	if ls < 1 || rs < 1 {
		return nil, fmt.Errorf("srs: graduation thresholds [%d, %d] must be positive", ls, rs)
	}

	seed := cfg.FuzzSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Scheduler{
		model:            NewModel(params),
		desiredRetention: dr,
		minimumInterval:  minIvl,
		maximumInterval:  maxIvl,
		learningSteps:    ls,
		relearningSteps:  rs,
		disableFuzzing:   cfg.DisableFuzzing,
		rng:              rand.New(rand.NewSource(seed)),
		items:            make(map[string]Card),
	}, nil
}

// AddItem starts tracking a new item in the New state and returns its card.
// Returns ErrItemExists if the id is already tracked.
func (s *Scheduler) AddItem(id string) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		return Card{}, fmt.Errorf("%w: %q", ErrItemExists, id)
	}
	c := NewCard(id)
	s.items[id] = c
	return c.clone(), nil
}

// Restore inserts a previously persisted card, replacing any tracked state
// for the same id. Used to hydrate the scheduler from external storage.
func (s *Scheduler) Restore(card Card) error {
	if card.ID == "" {
		return fmt.Errorf("%w: empty item id", ErrNotFound)
	}
	if !card.State.isValid() {
		return fmt.Errorf("%w: card %q state %d", ErrInvalidState, card.ID, int(card.State))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[card.ID] = card.clone()
	return nil
}

// Forget stops tracking an item. Its review log entries are kept.
func (s *Scheduler) Forget(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(s.items, id)
	return nil
}

// Card returns a copy of the tracked card for id.
func (s *Scheduler) Card(id string) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.clone(), nil
}

// Items returns a copy of every tracked card.
func (s *Scheduler) Items() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Card, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c.clone())
	}
	return out
}

// Logs returns a copy of the accumulated review log.
func (s *Scheduler) Logs() []ReviewLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReviewLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// Parameters returns a snapshot of the adopted weight vector.
func (s *Scheduler) Parameters() Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Weights()
}

// AdoptParameters swaps in a new weight vector for all subsequent
// computations. The vector is validated first; an out-of-bounds vector is
// rejected and the previous one stays adopted. Adoption is always an
// explicit call: the optimizer never applies its result itself.
func (s *Scheduler) AdoptParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = NewModel(p)
	return nil
}

// Grade processes a review outcome for the item at the given time, updates
// its card, and appends a review log entry.
//
// Returns ErrNotFound for an unknown id, ErrInvalidRating for a rating
// outside Again..Easy, ErrInvalidState when the item is Suspended, and
// ErrNumericDomain if the recurrence produced a non-finite or out-of-range
// memory state (the card is left untouched in every error case).
func (s *Scheduler) Grade(id string, rating Rating, now time.Time) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	updated, log, err := s.reviewCard(c, rating, now)
	if err != nil {
		return Card{}, err
	}

	s.items[id] = updated
	s.logs = append(s.logs, log)
	return updated.clone(), nil
}

// SetSuspended toggles the item's suspended flag. Suspending stores the
// current state so resuming restores it; the due time is never touched, so
// no schedule information is lost. Toggling to the current value is a no-op.
func (s *Scheduler) SetSuspended(id string, suspended bool) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	switch {
	case suspended && c.State != Suspended:
		c.PriorState = c.State
		c.State = Suspended
	case !suspended && c.State == Suspended:
		c.State = c.PriorState
		c.PriorState = 0
	}
	s.items[id] = c
	return c.clone(), nil
}

// Due returns the ids of tracked items due at now, in review order.
func (s *Scheduler) Due(now time.Time) []string {
	return DueItems(s.Items(), now)
}

// Retrievability returns the predicted recall probability for the card at
// the given time. Returns 0 if the card has never been reviewed.
func (s *Scheduler) Retrievability(card Card, now time.Time) float64 {
	if card.LastReview == nil || card.Stability == nil {
		return 0
	}
	elapsed := now.Sub(*card.LastReview).Hours() / 24.0
	s.mu.Lock()
	m := s.model
	s.mu.Unlock()
	return m.Retrievability(*card.Stability, elapsed)
}

// Preview returns the card that each possible rating would produce, without
// mutating any tracked state.
func (s *Scheduler) Preview(card Card, now time.Time) (map[Rating]Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[Rating]Card, 4)
	for _, r := range []Rating{Again, Hard, Good, Easy} {
		c, _, err := s.reviewCard(card, r, now)
		if err != nil {
			return nil, err
		}
		result[r] = c
	}
	return result, nil
}

// Reschedule replays the given review logs against a fresh card to rebuild
// its scheduling state. Returns ErrItemIDMismatch if any log belongs to a
// different item.
func (s *Scheduler) Reschedule(card Card, logs []ReviewLog) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := card.clone()
	for _, log := range logs {
		if log.ItemID != c.ID {
			return Card{}, fmt.Errorf("%w: card %q, log %q", ErrItemIDMismatch, c.ID, log.ItemID)
		}
		var err error
		c, _, err = s.reviewCard(c, log.Rating, log.ReviewedAt)
		if err != nil {
			return Card{}, err
		}
	}
	return c, nil
}

// reviewCard runs the full grading pipeline on a copy of the card.
// Caller holds s.mu.
func (s *Scheduler) reviewCard(card Card, rating Rating, now time.Time) (Card, ReviewLog, error) {
	if !rating.IsValid() {
		return Card{}, ReviewLog{}, fmt.Errorf("%w: %d (item %q)", ErrInvalidRating, int(rating), card.ID)
	}
	if card.State == Suspended {
		return Card{}, ReviewLog{}, fmt.Errorf("%w: item %q is suspended", ErrInvalidState, card.ID)
	}

	c := card.clone()

	// Elapsed days since last review (0 on first review).
	var elapsedDays float64
	if c.LastReview != nil {
		elapsedDays = now.Sub(*c.LastReview).Hours() / 24.0
		if elapsedDays < 0 {
			elapsedDays = 0
		}
	}

	log := ReviewLog{
		ItemID:                  c.ID,
		Rating:                  rating,
		ReviewedAt:              now,
		ElapsedDays:             elapsedDays,
		StabilityBefore:         c.Stability,
		DifficultyBefore:        c.Difficulty,
		PredictedRetrievability: 1.0,
	}

	// Memory update: first grade initializes S/D, later grades apply the
	// recurrences against retrievability at review time.
	if c.Stability == nil || c.Difficulty == nil {
		c.setStability(s.model.InitStability(rating))
		c.setDifficulty(s.model.InitDifficulty(rating))
	} else {
		r := s.model.Retrievability(*c.Stability, elapsedDays)
		log.PredictedRetrievability = r
		c.setStability(s.model.NextStability(*c.Difficulty, *c.Stability, r, rating))
		c.setDifficulty(s.model.NextDifficulty(*c.Difficulty, rating))
	}

	if err := checkMemoryState(c.ID, *c.Stability, *c.Difficulty); err != nil {
		return Card{}, ReviewLog{}, err
	}
	log.StabilityAfter = *c.Stability
	log.DifficultyAfter = *c.Difficulty

	s.transition(&c, rating)

	// Interval from the inverted forgetting curve, fuzzed once the card is
	// in long-term review.
	days := s.model.NextInterval(*c.Stability, s.desiredRetention, s.minimumInterval, s.maximumInterval)
	if !s.disableFuzzing && c.State == Review {
		days = applyFuzz(days, s.minimumInterval, s.maximumInterval, s.rng)
	}

	c.Due = now.Add(time.Duration(days) * 24 * time.Hour)
	c.LastReview = &now

	return c, log, nil
}

// transition applies the review-state machine. Again resets the success
// counter and lapses the card; successes count toward graduation, with Easy
// graduating immediately.
func (s *Scheduler) transition(c *Card, rating Rating) {
	if rating == Again {
		c.Lapses++
		switch c.State {
		case Review, Relearning:
			c.State = Relearning
		default:
			// Not yet graduated: stays in initial learning.
			c.State = Learning
		}
		c.setStep(0)
		return
	}

	switch c.State {
	case New:
		c.State = Learning
		fallthrough
	case Learning:
		s.advanceStep(c, rating, s.learningSteps)
	case Relearning:
		s.advanceStep(c, rating, s.relearningSteps)
	case Review:
		c.clearStep()
	}
}

// advanceStep counts a consecutive success and graduates the card to Review
// once the threshold is met. Easy skips the remaining steps.
func (s *Scheduler) advanceStep(c *Card, rating Rating, threshold int) {
	step := 1
	if c.Step != nil {
		step = *c.Step + 1
	}
	if rating == Easy || step >= threshold {
		c.State = Review
		c.clearStep()
		return
	}
	c.setStep(step)
}

// checkMemoryState rejects non-finite or out-of-domain S/D. Such values
// indicate a malformed weight vector or corrupted card state; they are
// reported, never silently clamped back to validity.
func checkMemoryState(id string, stability, difficulty float64) error {
	if math.IsNaN(stability) || math.IsInf(stability, 0) || stability <= 0 {
		return fmt.Errorf("%w: item %q stability %v", ErrNumericDomain, id, stability)
	}
	if math.IsNaN(difficulty) || math.IsInf(difficulty, 0) ||
		difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return fmt.Errorf("%w: item %q difficulty %v", ErrNumericDomain, id, difficulty)
	}
	return nil
}

// schedulerJSON is the serialized form of a Scheduler's configuration.
type schedulerJSON struct {
	Parameters       Parameters `json:"parameters"`
	DesiredRetention float64    `json:"desired_retention"`
	MinimumInterval  int        `json:"minimum_interval"`
	MaximumInterval  int        `json:"maximum_interval"`
	LearningSteps    int        `json:"learning_steps"`
	RelearningSteps  int        `json:"relearning_steps"`
	DisableFuzzing   bool       `json:"disable_fuzzing"`
}

// MarshalJSON implements json.Marshaler. Only the configuration is
// serialized; tracked cards and logs are persisted externally.
func (s *Scheduler) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(schedulerJSON{
		Parameters:       s.model.Weights(),
		DesiredRetention: s.desiredRetention,
		MinimumInterval:  s.minimumInterval,
		MaximumInterval:  s.maximumInterval,
		LearningSteps:    s.learningSteps,
		RelearningSteps:  s.relearningSteps,
		DisableFuzzing:   s.disableFuzzing,
	})
}

// UnmarshalJSON implements json.Unmarshaler. It rebuilds the scheduler from
// the serialized config with an empty registry.
func (s *Scheduler) UnmarshalJSON(data []byte) error {
	var j schedulerJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	rebuilt, err := NewScheduler(SchedulerConfig{
		Parameters:       j.Parameters,
		DesiredRetention: j.DesiredRetention,
		MinimumInterval:  j.MinimumInterval,
		MaximumInterval:  j.MaximumInterval,
		LearningSteps:    j.LearningSteps,
		RelearningSteps:  j.RelearningSteps,
		DisableFuzzing:   j.DisableFuzzing,
	})
	if err != nil {
		return err
	}
	*s = Scheduler{
		model:            rebuilt.model,
		desiredRetention: rebuilt.desiredRetention,
		minimumInterval:  rebuilt.minimumInterval,
		maximumInterval:  rebuilt.maximumInterval,
		learningSteps:    rebuilt.learningSteps,
		relearningSteps:  rebuilt.relearningSteps,
		disableFuzzing:   rebuilt.disableFuzzing,
		rng:              rebuilt.rng,
		items:            rebuilt.items,
	}
	return nil
}
