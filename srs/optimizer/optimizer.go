package optimizer

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/revisehq/revise/srs"
)

var (
	// ErrEmptyLogs is returned when no review logs are provided.
	ErrEmptyLogs = errors.New("optimizer: no review logs provided")

	// ErrInsufficientData is returned when cross-day reviews are fewer than
	// MinReviews. The default vector is reported instead of an overfit one.
	ErrInsufficientData = errors.New("optimizer: insufficient cross-day reviews for optimization")

	// ErrDiverged is returned when the epoch loss worsens beyond
	// DivergenceTolerance; the pre-fit vector is reported untouched.
	ErrDiverged = errors.New("optimizer: loss diverged, keeping previous parameters")
)

// OptimizerConfig configures the training process.
// Zero values are replaced with sensible defaults.
type OptimizerConfig struct {
	Epochs              int     `json:"epochs"`               // default 5
	MiniBatchSize       int     `json:"mini_batch_size"`      // default 512
	LearningRate        float64 `json:"learning_rate"`        // default 0.04
	MaxSeqLen           int     `json:"max_seq_len"`          // default 64
	MinReviews          int     `json:"min_reviews"`          // default 50
	Tolerance           float64 `json:"tolerance"`            // default 1e-4
	DivergenceTolerance float64 `json:"divergence_tolerance"` // default 0.05
}

// Result reports the outcome of a parameter fit.
type Result struct {
	Parameters srs.Parameters `json:"parameters"`
	Loss       float64        `json:"loss"`
	Epochs     int            `json:"epochs"`
	Converged  bool           `json:"converged"`
}

// Optimizer trains srs parameters from review logs using mini-batch
// gradient descent with Adam and cosine annealing learning rate.
type Optimizer struct {
	epochs              int
	miniBatchSize       int
	learningRate        float64
	maxSeqLen           int
	minReviews          int
	tolerance           float64
	divergenceTolerance float64
}

// NewOptimizer creates an Optimizer with the given config.
// Zero-valued fields receive defaults: Epochs=5, MiniBatchSize=512,
// LearningRate=0.04, MaxSeqLen=64, MinReviews=50, Tolerance=1e-4,
// DivergenceTolerance=0.05.
func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	o := &Optimizer{
		epochs:              cfg.Epochs,
		miniBatchSize:       cfg.MiniBatchSize,
		learningRate:        cfg.LearningRate,
		maxSeqLen:           cfg.MaxSeqLen,
		minReviews:          cfg.MinReviews,
		tolerance:           cfg.Tolerance,
		divergenceTolerance: cfg.DivergenceTolerance,
	}
	if o.epochs == 0 {
		o.epochs = 5
	}
	if o.miniBatchSize == 0 {
		o.miniBatchSize = 512
	}
	if o.learningRate == 0 {
		o.learningRate = 0.04
	}
	if o.maxSeqLen == 0 {
		o.maxSeqLen = 64
	}
	if o.minReviews == 0 {
		o.minReviews = 50
	}
	if o.tolerance == 0 {
		o.tolerance = 1e-4
	}
	if o.divergenceTolerance == 0 {
		o.divergenceTolerance = 0.05
	}
	return o
}

// ComputeOptimalParameters fits the weight vector from review logs.
// It starts from DefaultParameters and uses mini-batch gradient descent
// (numerical central differences) with Adam optimizer and cosine annealing
// LR; every weight is hard-clamped to its bounds after each step. Each
// item's memory trajectory is replayed forward from its first review under
// the candidate weights.
//
// The fit stops early with Converged=true when the relative epoch-loss
// improvement falls below Tolerance, and aborts with ErrDiverged if the
// loss worsens beyond DivergenceTolerance over the best seen.
//
// Returns ErrEmptyLogs if logs is empty, or ErrInsufficientData (reporting
// DefaultParameters) if cross-day reviews are fewer than MinReviews.
// Cancelling ctx returns the best result so far; cancellation is checked
// before every gradient step, not just per epoch. Nothing is adopted either
// way — adoption is the caller's explicit Scheduler.AdoptParameters call.
func (o *Optimizer) ComputeOptimalParameters(ctx context.Context, logs []srs.ReviewLog) (Result, error) {
	if len(logs) == 0 {
		return Result{}, ErrEmptyLogs
	}

	data := formatRevlogs(logs)

	// Truncate each item's reviews to maxSeqLen.
	for itemID, reviews := range data {
		if len(reviews) > o.maxSeqLen {
			data[itemID] = reviews[:o.maxSeqLen]
		}
	}

	numReviews := countCrossDayReviews(data)
	if numReviews < o.minReviews {
		return Result{Parameters: srs.DefaultParameters}, ErrInsufficientData
	}

	params := srs.DefaultParameters
	batchSize := min(o.miniBatchSize, numReviews)
	tMax := int(math.Ceil(float64(numReviews)/float64(batchSize))) * o.epochs
	adam := NewAdam(o.learningRate)
	ca := NewCosineAnnealing(o.learningRate, tMax)
	rng := rand.New(rand.NewSource(42))

	// Sorted item IDs for deterministic shuffle, so refitting the same log
	// reproduces the same result.
	itemIDs := make([]string, 0, len(data))
	for id := range data {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	best := Result{Parameters: params, Loss: computeBatchLoss(params, data)}
	prevLoss := best.Loss

	for epoch := 0; epoch < o.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		rng.Shuffle(len(itemIDs), func(i, j int) {
			itemIDs[i], itemIDs[j] = itemIDs[j], itemIDs[i]
		})

		batchData := make(map[string][]review)
		crossDayCount := 0

		for _, itemID := range itemIDs {
			reviews := data[itemID]
			batchData[itemID] = reviews

			for _, r := range reviews {
				if r.elapsedDays >= 1.0 {
					crossDayCount++
				}
			}

			if crossDayCount >= batchSize {
				if err := ctx.Err(); err != nil {
					return best, err
				}
				grad := numericalGradient(params, batchData)
				adam.SetLR(ca.LR())
				params = adam.Update(params, grad).Clamp()
				ca.Step()

				batchData = make(map[string][]review)
				crossDayCount = 0
			}
		}

		// Handle remaining reviews at end of epoch.
		if crossDayCount > 0 {
			if err := ctx.Err(); err != nil {
				return best, err
			}
			grad := numericalGradient(params, batchData)
			adam.SetLR(ca.LR())
			params = adam.Update(params, grad).Clamp()
			ca.Step()
		}

		epochLoss := computeBatchLoss(params, data)
		best.Epochs = epoch + 1

		if epochLoss > best.Loss+o.divergenceTolerance {
			return Result{Parameters: srs.DefaultParameters, Loss: best.Loss, Epochs: epoch + 1}, ErrDiverged
		}
		if epochLoss < best.Loss {
			best.Loss = epochLoss
			best.Parameters = params
		}

		if math.Abs(prevLoss-epochLoss) < o.tolerance*math.Max(1, prevLoss) {
			best.Converged = true
			return best, nil
		}
		prevLoss = epochLoss
	}

	return best, nil
}

// ComputeBatchLoss computes the average BCE loss over all cross-day reviews.
// This is a convenience wrapper that preprocesses the review logs.
func (o *Optimizer) ComputeBatchLoss(params srs.Parameters, logs []srs.ReviewLog) float64 {
	data := formatRevlogs(logs)
	return computeBatchLoss(params, data)
}
