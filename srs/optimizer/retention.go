package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/revisehq/revise/srs"
)

var (
	// ErrInsufficientLogs is returned when fewer than 512 review logs are
	// provided for optimal retention.
	ErrInsufficientLogs = errors.New("optimizer: at least 512 review logs required for optimal retention")

	// ErrMissingDuration is returned when any ReviewDuration is nil.
	ErrMissingDuration = errors.New("optimizer: ReviewDuration must not be nil for optimal retention")
)

// computeProbsAndCosts computes rating probabilities and average durations
// from review logs. "First review" = the first review of each item.
// "Non-first" = all subsequent reviews. Non-first recall probabilities are
// computed among recalled reviews only (not Again).
func computeProbsAndCosts(logs []srs.ReviewLog) map[string]float64 {
	// Group by item and sort by time to identify first vs non-first.
	type entry struct {
		rating   srs.Rating
		duration float64
		time     time.Time
	}
	groups := make(map[string][]entry)
	for _, log := range logs {
		d := 0.0
		if log.ReviewDuration != nil {
			d = float64(*log.ReviewDuration)
		}
		groups[log.ItemID] = append(groups[log.ItemID], entry{
			rating:   log.Rating,
			duration: d,
			time:     log.ReviewedAt,
		})
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool {
			return g[i].time.Before(g[j].time)
		})
	}

	// Counters for first reviews.
	var firstTotal float64
	firstCount := map[srs.Rating]float64{}
	firstDurSum := map[srs.Rating]float64{}
	firstDurCount := map[srs.Rating]float64{}

	// Counters for non-first reviews.
	var recallTotal float64
	recallCount := map[srs.Rating]float64{}
	nonFirstDurSum := map[srs.Rating]float64{}
	nonFirstDurCount := map[srs.Rating]float64{}

	for _, g := range groups {
		for i, e := range g {
			if i == 0 {
				firstTotal++
				firstCount[e.rating]++
				firstDurSum[e.rating] += e.duration
				firstDurCount[e.rating]++
			} else {
				nonFirstDurSum[e.rating] += e.duration
				nonFirstDurCount[e.rating]++
				if e.rating != srs.Again {
					recallTotal++
					recallCount[e.rating]++
				}
			}
		}
	}

	m := make(map[string]float64)

	// First-review probabilities.
	if firstTotal > 0 {
		m["prob_first_again"] = firstCount[srs.Again] / firstTotal
		m["prob_first_hard"] = firstCount[srs.Hard] / firstTotal
		m["prob_first_good"] = firstCount[srs.Good] / firstTotal
		m["prob_first_easy"] = firstCount[srs.Easy] / firstTotal
	}

	// First-review average durations.
	for _, r := range []srs.Rating{srs.Again, srs.Hard, srs.Good, srs.Easy} {
		key := "avg_first_" + ratingLowerNames[r] + "_duration"
		if firstDurCount[r] > 0 {
			m[key] = firstDurSum[r] / firstDurCount[r]
		}
	}

	// Non-first recall probabilities (among Hard/Good/Easy only).
	if recallTotal > 0 {
		m["prob_hard"] = recallCount[srs.Hard] / recallTotal
		m["prob_good"] = recallCount[srs.Good] / recallTotal
		m["prob_easy"] = recallCount[srs.Easy] / recallTotal
	} else {
		// Default to uniform when no recall data.
		m["prob_hard"] = 1.0 / 3.0
		m["prob_good"] = 1.0 / 3.0
		m["prob_easy"] = 1.0 / 3.0
	}

	// Non-first average durations.
	for _, r := range []srs.Rating{srs.Again, srs.Hard, srs.Good, srs.Easy} {
		key := "avg_" + ratingLowerNames[r] + "_duration"
		if nonFirstDurCount[r] > 0 {
			m[key] = nonFirstDurSum[r] / nonFirstDurCount[r]
		}
	}

	return m
}

var ratingLowerNames = map[srs.Rating]string{
	srs.Again: "again",
	srs.Hard:  "hard",
	srs.Good:  "good",
	srs.Easy:  "easy",
}

// simulateCost runs a Monte Carlo simulation to estimate the cost per
// retained item for a given desired retention. It simulates 1000 items
// over one year.
func simulateCost(retention float64, params srs.Parameters, probsAndCosts map[string]float64) float64 {
	const numItems = 1000

	s, err := srs.NewScheduler(srs.SchedulerConfig{
		Parameters:       params,
		DesiredRetention: retention,
		DisableFuzzing:   true,
	})
	if err != nil {
		return math.Inf(1)
	}

	rng := rand.New(rand.NewSource(42))

	startDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Extract probabilities and costs.
	pfAgain := probsAndCosts["prob_first_again"]
	pfHard := probsAndCosts["prob_first_hard"]
	pfGood := probsAndCosts["prob_first_good"]
	// pfEasy is remainder

	dFirstAgain := probsAndCosts["avg_first_again_duration"]
	dFirstHard := probsAndCosts["avg_first_hard_duration"]
	dFirstGood := probsAndCosts["avg_first_good_duration"]
	dFirstEasy := probsAndCosts["avg_first_easy_duration"]

	pHard := probsAndCosts["prob_hard"]
	pGood := probsAndCosts["prob_good"]
	// pEasy is remainder

	dAgain := probsAndCosts["avg_again_duration"]
	dHard := probsAndCosts["avg_hard_duration"]
	dGood := probsAndCosts["avg_good_duration"]
	dEasy := probsAndCosts["avg_easy_duration"]

	var totalDuration float64

	for i := 0; i < numItems; i++ {
		id := fmt.Sprintf("sim-%d", i+1)
		card, err := s.AddItem(id)
		if err != nil {
			return math.Inf(1)
		}
		now := startDate
		isFirst := true

		for !now.After(endDate) {
			var rating srs.Rating
			var dur float64

			if isFirst {
				// Choose rating from first-review probabilities.
				p := rng.Float64()
				switch {
				case p < pfAgain:
					rating = srs.Again
					dur = dFirstAgain
				case p < pfAgain+pfHard:
					rating = srs.Hard
					dur = dFirstHard
				case p < pfAgain+pfHard+pfGood:
					rating = srs.Good
					dur = dFirstGood
				default:
					rating = srs.Easy
					dur = dFirstEasy
				}
				isFirst = false
			} else {
				// Non-first: with probability=retention → recall, else → Again.
				if rng.Float64() < retention {
					// Recalled: choose among Hard/Good/Easy.
					p := rng.Float64()
					switch {
					case p < pHard:
						rating = srs.Hard
						dur = dHard
					case p < pHard+pGood:
						rating = srs.Good
						dur = dGood
					default:
						rating = srs.Easy
						dur = dEasy
					}
				} else {
					rating = srs.Again
					dur = dAgain
				}
			}

			totalDuration += dur
			card, err = s.Grade(id, rating, now)
			if err != nil {
				return math.Inf(1)
			}
			now = card.Due
		}
	}

	return totalDuration / (retention * numItems)
}

// ComputeOptimalRetention finds the retention value (from candidates) with
// minimal simulated cost. It validates inputs and checks for context
// cancellation.
func (o *Optimizer) ComputeOptimalRetention(ctx context.Context, params srs.Parameters, logs []srs.ReviewLog) (float64, error) {
	if len(logs) < 512 {
		return 0, ErrInsufficientLogs
	}
	for _, log := range logs {
		if log.ReviewDuration == nil {
			return 0, ErrMissingDuration
		}
	}

	probsAndCosts := computeProbsAndCosts(logs)
	candidates := []float64{0.70, 0.75, 0.80, 0.85, 0.90, 0.95}

	bestRetention := candidates[0]
	bestCost := math.Inf(1)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		cost := simulateCost(c, params, probsAndCosts)
		if cost < bestCost {
			bestCost = cost
			bestRetention = c
		}
	}

	return bestRetention, nil
}
