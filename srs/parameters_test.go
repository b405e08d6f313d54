package srs

import (
	"errors"
	"testing"
)

func TestDefaultParametersValid(t *testing.T) {
	if err := DefaultParameters.Validate(); err != nil {
		t.Errorf("DefaultParameters failed validation: %v", err)
	}
}

func TestValidateOutOfBounds(t *testing.T) {
	for i := 0; i < len(DefaultParameters); i++ {
		low := DefaultParameters
		low[i] = LowerBounds[i] - 1
		if err := low.Validate(); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("w[%d] below lower bound: got %v, want ErrInvalidParameters", i, err)
		}

		high := DefaultParameters
		high[i] = UpperBounds[i] + 1
		if err := high.Validate(); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("w[%d] above upper bound: got %v, want ErrInvalidParameters", i, err)
		}
	}
}

func TestValidateAtBounds(t *testing.T) {
	if err := LowerBounds.Validate(); err != nil {
		t.Errorf("LowerBounds should validate: %v", err)
	}
	if err := UpperBounds.Validate(); err != nil {
		t.Errorf("UpperBounds should validate: %v", err)
	}
}

func TestClamp(t *testing.T) {
	p := DefaultParameters
	p[0] = -5
	p[16] = 100
	c := p.Clamp()
	if c[0] != LowerBounds[0] {
		t.Errorf("Clamp w[0] = %f, want %f", c[0], LowerBounds[0])
	}
	if c[16] != UpperBounds[16] {
		t.Errorf("Clamp w[16] = %f, want %f", c[16], UpperBounds[16])
	}
	if err := c.Clamp().Validate(); err != nil {
		t.Errorf("clamped vector should validate: %v", err)
	}
}
