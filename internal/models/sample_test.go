package models

import (
	"math"
	"testing"
)

func makeWindow(n int) Window {
	w := make(Window, n)
	for i := range w {
		w[i] = Sample{ID: int64(i), Timestamp: int64(1000 + i*10)}
	}
	return w
}

func TestDownsampleForcesLast(t *testing.T) {
	w := makeWindow(101)
	got := w.Downsample(7)

	if got.Last().ID != 100 {
		t.Fatalf("last sample should be index 100, got %d", got.Last().ID)
	}
	// 0,7,...,98 is 15 samples plus the forced last one
	if len(got) != 16 {
		t.Fatalf("expected 16 samples, got %d", len(got))
	}
	for i, s := range got[:len(got)-1] {
		if s.ID%7 != 0 {
			t.Errorf("sample %d has id %d, not a multiple of 7", i, s.ID)
		}
	}
}

func TestDownsampleNoDuplicateLast(t *testing.T) {
	w := makeWindow(101)
	got := w.Downsample(10)
	if len(got) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(got))
	}
	if got[len(got)-2].ID == got.Last().ID {
		t.Fatalf("last sample duplicated")
	}
}

func TestDownsampleEdgeCases(t *testing.T) {
	if got := (Window{}).Downsample(3); len(got) != 0 {
		t.Errorf("empty window should stay empty")
	}
	w := makeWindow(5)
	if got := w.Downsample(0); len(got) != 5 {
		t.Errorf("stride 0 should behave like 1, got %d", len(got))
	}
	if got := makeWindow(1).Downsample(50); len(got) != 1 {
		t.Errorf("single sample window should keep its only sample")
	}
}

func TestNormalizeDropsNonFinite(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(-1)
	alt := 12.0
	s := Sample{Accuracy: &nan, Altitude: &alt, Velocity: &inf}
	s.Normalize()
	if s.Accuracy != nil || s.Velocity != nil {
		t.Errorf("non-finite values should be dropped")
	}
	if s.Altitude == nil || *s.Altitude != 12 {
		t.Errorf("finite altitude should be kept")
	}
	if Float(nan) != nil {
		t.Errorf("Float(NaN) should be nil")
	}
}
