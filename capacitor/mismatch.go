package capacitor

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sample is one physical realisation of an Array.
type Sample struct {
	weights *mat.VecDense
	base    float64
	sum     float64
}

// Mismatch draws a new Sample from the ideal configuration. Every capacitor,
// the base capacitor included, is scaled by an independent Gaussian factor
// with mean one and standard deviation
//
//	unitRelativeMismatch / sqrt(w)
//
// so that small capacitors see proportionally larger mismatch. The draw always
// starts from the ideal weights, repeated calls never compound.
func (a *Array) Mismatch(unitRelativeMismatch float64, src rand.Source) *Sample {
	weights := mat.NewVecDense(a.Len(), nil)
	for index := 0; index < a.Len(); index++ {
		w := a.weights.AtVec(index)
		weights.SetVec(index, w*factor(w, unitRelativeMismatch, src))
	}
	base := a.base * factor(a.base, unitRelativeMismatch, src)
	return &Sample{
		weights: weights,
		base:    base,
		sum:     mat.Sum(weights) + base,
	}
}

func factor(weight, unitRelativeMismatch float64, src rand.Source) float64 {
	n := distuv.Normal{
		Mu:    1,
		Sigma: unitRelativeMismatch / math.Sqrt(weight),
		Src:   src,
	}
	return n.Rand()
}

// Len is the number of switched capacitors.
func (s *Sample) Len() int { return s.weights.Len() }

// Weight returns the realised weight of bit index.
func (s *Sample) Weight(index int) float64 { return s.weights.AtVec(index) }

// Weights returns a copy of the realised weights.
func (s *Sample) Weights() []float64 {
	res := make([]float64, s.Len())
	copy(res, s.weights.RawVector().Data)
	return res
}

// Vector exposes the realised weights as a read only gonum vector.
func (s *Sample) Vector() mat.Vector { return s.weights }

// Base is the realised base capacitance.
func (s *Sample) Base() float64 { return s.base }

// Sum is the total realised capacitance including the base capacitor.
func (s *Sample) Sum() float64 { return s.sum }

// Factors returns the realised multiplicative factors relative to ideal, the
// base capacitor last.
func (s *Sample) Factors(ideal *Array) []float64 {
	res := make([]float64, s.Len()+1)
	for index := 0; index < s.Len(); index++ {
		res[index] = s.weights.AtVec(index) / ideal.Weight(index)
	}
	res[s.Len()] = s.base / ideal.Base()
	return res
}
