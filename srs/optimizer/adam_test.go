package optimizer

import (
	"math"
	"testing"

	"github.com/revisehq/revise/srs"
)

func TestAdamStepsAgainstGradient(t *testing.T) {
	adam := NewAdam(0.01)
	params := srs.DefaultParameters

	var grad srs.Parameters
	grad[0] = 1.0  // positive gradient → parameter should decrease
	grad[1] = -1.0 // negative gradient → parameter should increase

	updated := adam.Update(params, grad)
	if updated[0] >= params[0] {
		t.Errorf("w[0] = %f, want < %f", updated[0], params[0])
	}
	if updated[1] <= params[1] {
		t.Errorf("w[1] = %f, want > %f", updated[1], params[1])
	}
}

func TestAdamZeroGradientIsNoop(t *testing.T) {
	adam := NewAdam(0.01)
	params := srs.DefaultParameters
	if got := adam.Update(params, srs.Parameters{}); got != params {
		t.Error("zero gradient should leave every weight untouched")
	}
}

func TestAdamFirstStepMagnitude(t *testing.T) {
	// With bias correction the first step is ~lr regardless of gradient scale.
	adam := NewAdam(0.04)
	params := srs.DefaultParameters
	var grad srs.Parameters
	grad[0] = 1000.0

	updated := adam.Update(params, grad)
	step := params[0] - updated[0]
	if math.Abs(step-0.04) > 1e-6 {
		t.Errorf("first step = %f, want ~0.04", step)
	}
}

func TestAdamAccumulatesMomentum(t *testing.T) {
	adam := NewAdam(0.01)
	params := srs.DefaultParameters
	var grad srs.Parameters
	grad[0] = 1.0

	p1 := adam.Update(params, grad)
	// Momentum keeps pushing in the same direction on repeated gradients.
	p2 := adam.Update(p1, grad)
	if p2[0] >= p1[0] {
		t.Errorf("w[0] should keep decreasing: %f then %f", p1[0], p2[0])
	}
}

func TestCosineAnnealingSchedule(t *testing.T) {
	ca := NewCosineAnnealing(0.04, 10)

	if got := ca.LR(); math.Abs(got-0.04) > 1e-12 {
		t.Errorf("LR(t=0) = %f, want lrMax 0.04", got)
	}

	prev := ca.LR()
	for i := 0; i < 10; i++ {
		lr := ca.Step()
		if lr > prev {
			t.Errorf("step %d: LR rose from %f to %f", i+1, prev, lr)
		}
		prev = lr
	}
	if math.Abs(prev) > 1e-12 {
		t.Errorf("LR(t=tMax) = %f, want 0", prev)
	}
}

func TestCosineAnnealingHalfwayPoint(t *testing.T) {
	ca := NewCosineAnnealing(0.04, 10)
	for i := 0; i < 5; i++ {
		ca.Step()
	}
	if got := ca.LR(); math.Abs(got-0.02) > 1e-12 {
		t.Errorf("LR at t=tMax/2 = %f, want lrMax/2 = 0.02", got)
	}
}
