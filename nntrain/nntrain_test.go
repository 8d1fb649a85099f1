package nntrain

import (
	"path/filepath"
	"testing"
)

func TestXORRoundTrip(t *testing.T) {
	rng := NewRNG(1)
	l1, err := Dense(2, 4, Tanh, rng)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := Dense(4, 1, Identity, rng)
	if err != nil {
		t.Fatal(err)
	}
	n, err := New(MSE, l1, l2)
	if err != nil {
		t.Fatal(err)
	}

	d, err := NewSet(
		[][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		[][]float64{{0}, {1}, {1}, {0}},
	)
	if err != nil {
		t.Fatal(err)
	}

	before, err := Evaluate(n, d)
	if err != nil {
		t.Fatal(err)
	}

	trainer, err := NewBatch(Config{Schedule: Constant(0.1), BatchSize: 4, Rounds: 200})
	if err != nil {
		t.Fatal(err)
	}
	if err := trainer.Train(n, d); err != nil {
		t.Fatal(err)
	}

	after, err := Evaluate(n, d)
	if err != nil {
		t.Fatal(err)
	}
	if after >= before {
		t.Errorf("error did not decrease: %v -> %v", before, after)
	}

	path := filepath.Join(t.TempDir(), "xor.gob")
	if err := n.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path, NewRNG(2))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < d.Len(); i++ {
		x, _ := d.Sample(i)
		want, _ := n.Forward(x)
		got, err := loaded.Forward(x)
		if err != nil {
			t.Fatal(err)
		}
		if want[0] != got[0] {
			t.Errorf("sample %d: loaded network predicts %v, want %v", i, got[0], want[0])
		}
	}
}
