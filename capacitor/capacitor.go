// Package capacitor models the weighted capacitor array behind a SAR
// converter. An Array is the immutable ideal configuration, a Sample is one
// physical realisation of it, drawn with or without random mismatch.
package capacitor

import (
	"math"

	"github.com/hammal/saradc/gonumExtensions"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyArray        = errors.New("capacitor array has no weights")
	ErrNonPositiveWeight = errors.New("capacitor weight must be positive")
	ErrNonFiniteWeight   = errors.New("capacitor weight must be finite")
)

// Array is the ideal capacitor configuration, MSB first, together with the
// base capacitor that stays connected to ground.
type Array struct {
	weights *mat.VecDense
	base    float64
	sum     float64
}

// Binary returns the strictly binary array 2^(bits-1), ..., 2, 1.
func Binary(bits int, base float64) (*Array, error) {
	if bits < 1 {
		return nil, ErrEmptyArray
	}
	return newArray(gonumExtensions.Powers(bits, 2), base)
}

// NewArray validates and copies weights into a new ideal configuration.
func NewArray(weights []float64, base float64) (*Array, error) {
	if len(weights) == 0 {
		return nil, ErrEmptyArray
	}
	data := make([]float64, len(weights))
	copy(data, weights)
	return newArray(mat.NewVecDense(len(data), data), base)
}

func newArray(weights *mat.VecDense, base float64) (*Array, error) {
	if gonumExtensions.NANORINF(weights) || math.IsNaN(base) || math.IsInf(base, 0) {
		return nil, ErrNonFiniteWeight
	}
	for index := 0; index < weights.Len(); index++ {
		if weights.AtVec(index) <= 0 {
			return nil, errors.Wrapf(ErrNonPositiveWeight, "weight %d is %v", index, weights.AtVec(index))
		}
	}
	if base <= 0 {
		return nil, errors.Wrapf(ErrNonPositiveWeight, "base capacitor is %v", base)
	}
	return &Array{
		weights: weights,
		base:    base,
		sum:     mat.Sum(weights) + base,
	}, nil
}

// Len is the number of switched capacitors (bits).
func (a *Array) Len() int { return a.weights.Len() }

// Weight returns the ideal weight of bit index.
func (a *Array) Weight(index int) float64 { return a.weights.AtVec(index) }

// Weights returns a copy of the ideal weights.
func (a *Array) Weights() []float64 {
	res := make([]float64, a.Len())
	copy(res, a.weights.RawVector().Data)
	return res
}

// Vector exposes the ideal weights as a read only gonum vector.
func (a *Array) Vector() mat.Vector { return a.weights }

// Base is the ideal base capacitance.
func (a *Array) Base() float64 { return a.base }

// Sum is the total ideal capacitance including the base capacitor.
func (a *Array) Sum() float64 { return a.sum }

// IsIntegral reports whether every ideal weight is an integer, in which case
// decimal codes decoded with them are exact.
func (a *Array) IsIntegral() bool {
	for index := 0; index < a.Len(); index++ {
		if w := a.weights.AtVec(index); w != math.Trunc(w) {
			return false
		}
	}
	return true
}

// Redundancy returns for every bit the amount of capacitance below it that
// exceeds its own weight:
//
//	r_i = sum_{j>i} w_j + base - w_i
//
// A strictly binary array has zero redundancy everywhere, a negative entry
// means the lower bits cannot recover a wrong decision on that bit.
func (a *Array) Redundancy() []float64 {
	res := make([]float64, a.Len())
	below := a.base
	for index := a.Len() - 1; index >= 0; index-- {
		res[index] = below - a.weights.AtVec(index)
		below += a.weights.AtVec(index)
	}
	return res
}

// Nominal returns a Sample without mismatch.
func (a *Array) Nominal() *Sample {
	return &Sample{
		weights: mat.VecDenseCopyOf(a.weights),
		base:    a.base,
		sum:     a.sum,
	}
}
