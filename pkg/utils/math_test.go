package utils

import (
	"math"
	"testing"
)

func norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestNormalizeL2_UnitNorm(t *testing.T) {
	x := []float32{3, 4}
	NormalizeL2(x)
	if got := norm(x); math.Abs(got-1) > 1e-6 {
		t.Errorf("norm = %v, want 1", got)
	}
	if math.Abs(float64(x[0])-0.6) > 1e-6 || math.Abs(float64(x[1])-0.8) > 1e-6 {
		t.Errorf("x = %v, want [0.6 0.8]", x)
	}
}

func TestNormalizeL2_ZeroVectorUnchanged(t *testing.T) {
	x := []float32{0, 0, 0}
	NormalizeL2(x)
	for i, v := range x {
		if v != 0 {
			t.Errorf("x[%d] = %v, want 0", i, v)
		}
	}
}

func TestNormalizeL2_AlreadyUnit(t *testing.T) {
	x := []float32{1, 0, 0}
	NormalizeL2(x)
	if x[0] != 1 || x[1] != 0 || x[2] != 0 {
		t.Errorf("x = %v", x)
	}
}
