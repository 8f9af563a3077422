package mcdm

import (
	"errors"
	"math"
	"testing"
)

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		w       []float64
		n       int
		wantErr bool
	}{
		{"valid", []float64{0.5, 0.3, 0.2}, 3, false},
		{"within tolerance", []float64{0.5, 0.3, 0.2000000001}, 3, false},
		{"wrong length", []float64{0.5, 0.5}, 3, true},
		{"negative", []float64{1.2, -0.2}, 2, true},
		{"bad sum", []float64{0.5, 0.6}, 2, true},
		{"nan", []float64{math.NaN(), 1}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights("weights", tt.w, tt.n, DefaultTolerance)
			if (err != nil) != tt.wantErr {
				t.Fatalf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]float64{2, 1, 1})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if math.Abs(out[0]-0.5) > 1e-12 || math.Abs(Sum(out)-1) > 1e-12 {
		t.Errorf("unexpected normalized weights %v", out)
	}

	_, err = Normalize([]float64{0, 0})
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate for zero sum, got %v", err)
	}
}

func TestParsePolarity(t *testing.T) {
	if p, err := ParsePolarity("COST"); err != nil || p != Cost {
		t.Errorf("expected cost, got %q (%v)", p, err)
	}
	if p, err := ParsePolarity(""); err != nil || p != Benefit {
		t.Errorf("expected benefit default, got %q (%v)", p, err)
	}
	if _, err := ParsePolarity("neutral"); err == nil {
		t.Error("expected error for unknown polarity")
	}
}

func TestErrorMessages(t *testing.T) {
	err := Invalid("matrix", "expert %d is not square", 2)
	if err.Error() != "invalid matrix: expert 2 is not square" {
		t.Errorf("unexpected message %q", err.Error())
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "matrix" {
		t.Errorf("expected *ValidationError with field matrix, got %#v", err)
	}

	d := Degenerate("eigenvalue", "complex dominant value")
	if errors.Is(d, ErrValidation) {
		t.Error("degeneracy must not match ErrValidation")
	}
}
