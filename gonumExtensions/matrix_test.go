package gonumExtensions

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPowers(t *testing.T) {
	res := Powers(4, 2)
	expected := []float64{8, 4, 2, 1}
	for index := range expected {
		if res.AtVec(index) != expected[index] {
			t.Errorf("Powers(4, 2)[%v] = %v, expected %v", index, res.AtVec(index), expected[index])
		}
	}
}

func TestFull(t *testing.T) {
	res := Full(3, 2.5)
	if res.Len() != 3 {
		t.Fatalf("Wrong length %v", res.Len())
	}
	for index := 0; index < res.Len(); index++ {
		if res.AtVec(index) != 2.5 {
			t.Errorf("Full(3, 2.5)[%v] = %v", index, res.AtVec(index))
		}
	}
	if mat.Sum(Full(5, -1)) != -5 {
		t.Error("Full(5, -1) does not sum to -5")
	}
}

func TestNANORINF(t *testing.T) {
	if NANORINF(mat.NewVecDense(3, []float64{1, 2, 3})) {
		t.Error("Finite vector reported as NaN or Inf")
	}
	if !NANORINF(mat.NewVecDense(2, []float64{1, math.NaN()})) {
		t.Error("NaN not detected")
	}
	if !NANORINF(mat.NewVecDense(2, []float64{math.Inf(-1), 1})) {
		t.Error("Inf not detected")
	}
}

func TestMaxAbs(t *testing.T) {
	if res := MaxAbs([]float64{0.1, -0.7, 0.5}); res != 0.7 {
		t.Errorf("MaxAbs = %v, expected 0.7", res)
	}
	if res := MaxAbs(nil); res != 0 {
		t.Errorf("MaxAbs(nil) = %v, expected 0", res)
	}
}
