// Package optimizer trains the 17 srs model parameters from historical
// review logs.
//
// It provides two main capabilities:
//
//   - [Optimizer.ComputeOptimalParameters] fits the weight vector using
//     mini-batch gradient descent with the [Adam] optimizer and
//     [CosineAnnealing] learning rate schedule. Gradients are computed via
//     numerical central differences on binary cross-entropy loss, and every
//     item's memory trajectory is replayed under the candidate weights —
//     stored stability/difficulty values are never trusted, since they were
//     computed under the previously adopted weights.
//
//   - [Optimizer.ComputeOptimalRetention] finds the desired retention value
//     that minimizes total review cost via Monte Carlo simulation.
//
// # Usage
//
//	opt := optimizer.NewOptimizer(optimizer.OptimizerConfig{})
//	result, err := opt.ComputeOptimalParameters(ctx, logs)
//	if err == nil && result.Converged {
//	    scheduler.AdoptParameters(result.Parameters)
//	}
//
// The optimizer never adopts its result itself; adoption is always the
// caller's explicit Scheduler.AdoptParameters call, so cancelling a fit
// mid-run leaves the previously adopted vector untouched.
//
// # Data Requirements
//
// Parameter optimization requires at least MinReviews cross-day reviews
// (default 50). Optimal retention additionally requires ReviewDuration to
// be set on all review logs.
package optimizer
