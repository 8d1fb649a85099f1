package layer

import (
	"errors"
	"testing"
)

func TestDropoutForwardTraining(t *testing.T) {
	// Test that dropout replaces roughly p of the units during training
	dropout, err := NewDropout(100, 0.5, NewRNG(42))
	if err != nil {
		t.Fatal(err)
	}

	input := make([]float64, 100)
	for i := range input {
		input[i] = 1.0
	}

	output := dropout.Forward(input)

	nonZero := 0
	for _, v := range output {
		if v != 0 {
			nonZero++
		}
	}

	if nonZero < 30 || nonZero > 70 {
		t.Errorf("Expected ~50%% non-zero outputs, got %d/100", nonZero)
	}
}

func TestDropoutDeterministicSource(t *testing.T) {
	// u >= p keeps the unit, u < p drops it
	src := &seqSource{vals: []float64{0.1, 0.5, 0.9, 0.29}}
	dropout, err := NewDropout(4, 0.3, src, WithValue(-1))
	if err != nil {
		t.Fatal(err)
	}

	output := dropout.Forward([]float64{10, 20, 30, 40})
	expected := []float64{-1, 20, 30, -1}
	for i := range expected {
		if output[i] != expected[i] {
			t.Errorf("output[%d] = %v, want %v", i, output[i], expected[i])
		}
	}

	if src.i != 4 {
		t.Errorf("source advanced %d times, want 4", src.i)
	}
}

func TestDropoutZeroProbabilityPassThrough(t *testing.T) {
	dropout, err := NewDropout(10, 0, NewRNG(3))
	if err != nil {
		t.Fatal(err)
	}

	input := make([]float64, 10)
	for i := range input {
		input[i] = float64(i) - 4.5
	}

	for round := 0; round < 5; round++ {
		output := dropout.Forward(input)
		for i := range input {
			if output[i] != input[i] {
				t.Errorf("round %d: output[%d] = %v, want %v", round, i, output[i], input[i])
			}
		}
	}

	outErr := []float64{1, -2, 3, -4, 5, -6, 7, -8, 9, -10}
	inErr, grad := dropout.Backward(input, outErr)
	for i := range outErr {
		if inErr[i] != outErr[i] {
			t.Errorf("inErr[%d] = %v, want %v", i, inErr[i], outErr[i])
		}
	}
	if len(grad) != 0 {
		t.Errorf("gradient length = %d, want 0", len(grad))
	}
}

func TestDropoutForwardInference(t *testing.T) {
	dropout, err := NewDropout(100, 0.9, NewRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	dropout.SetTraining(false)

	input := make([]float64, 100)
	for i := range input {
		input[i] = float64(i)
	}

	output := dropout.Forward(input)
	for i := range input {
		if output[i] != input[i] {
			t.Errorf("Output[%d] = %f, expected %f", i, output[i], input[i])
		}
	}
}

func TestDropoutWeightsAndUpdate(t *testing.T) {
	dropout, err := NewDropout(3, 0.5, NewRNG(1))
	if err != nil {
		t.Fatal(err)
	}

	if w := dropout.Weights(); len(w) != 0 {
		t.Errorf("Weights() length = %d, want 0", len(w))
	}
	dropout.Update(Weights{})

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for non-empty delta")
		}
	}()
	dropout.Update(Weights{{1}})
}

func TestNewDropoutValidation(t *testing.T) {
	if _, err := NewDropout(0, 0.5, NewRNG(1)); !errors.Is(err, ErrZeroWidth) {
		t.Errorf("error = %v, want ErrZeroWidth", err)
	}
	for _, p := range []float64{-0.1, 1.1} {
		if _, err := NewDropout(4, p, NewRNG(1)); !errors.Is(err, ErrInvalidProbability) {
			t.Errorf("p=%v: error = %v, want ErrInvalidProbability", p, err)
		}
	}
	if _, err := NewDropout(4, 0.5, nil); !errors.Is(err, ErrNilSource) {
		t.Errorf("nil source: error = %v, want ErrNilSource", err)
	}
}
