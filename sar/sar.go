// Package sar implements behavioural successive approximation register
// converters on top of a weighted capacitor array.
package sar

import (
	"log"

	adc "github.com/hammal/saradc"
	"github.com/hammal/saradc/capacitor"
	"github.com/hammal/saradc/gonumExtensions"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrWeightCount is returned when replacement weights do not match the bit
// count of a converter.
var ErrWeightCount = errors.New("weight count does not match bit count")

// ErrNonIntegralWeight is returned when replacement weights would make the
// decimal code ambiguous.
var ErrNonIntegralWeight = errors.New("ideal weights must be integers")

var (
	_ adc.Mismatcher = (*CDAC)(nil)
	_ adc.Mismatcher = (*AlgorithmModel)(nil)
)

// search runs the successive approximation. Each decision compares the
// residual against the threshold and moves it by one weighted step towards
// the threshold.
func search(input, reference, threshold float64, weights mat.Vector, sum float64) adc.BitStream {
	bits := make(adc.BitStream, weights.Len())
	for index := range bits {
		step := reference * weights.AtVec(index) / sum
		if input >= threshold {
			bits[index] = 1
			input -= step
		} else {
			bits[index] = 0
			input += step
		}
	}
	return bits
}

// decode returns sum(bits[i] * weights[i]).
func decode(bits adc.BitStream, weights mat.Vector) float64 {
	return mat.Dot(bitVector(bits, weights.Len()), weights)
}

// reconstruct returns sum((2 bits[i] - 1) * reference * weights[i] / sum).
func reconstruct(bits adc.BitStream, reference float64, weights mat.Vector, sum float64) float64 {
	signs := gonumExtensions.Full(weights.Len(), -1)
	for index := 0; index < signs.Len() && index < len(bits); index++ {
		if bits[index] > 0 {
			signs.SetVec(index, 1)
		}
	}
	return reference * mat.Dot(signs, weights) / sum
}

func bitVector(bits adc.BitStream, length int) *mat.VecDense {
	res := mat.NewVecDense(length, nil)
	for index := 0; index < length && index < len(bits); index++ {
		res.SetVec(index, float64(bits[index]))
	}
	return res
}

// reportMismatch prints the realised weights the way a verbose mismatch run
// reports them.
func reportMismatch(logger *log.Logger, ideal *capacitor.Array, sample *capacitor.Sample) {
	if logger == nil {
		return
	}
	factors := sample.Factors(ideal)
	for index := 0; index < sample.Len(); index++ {
		logger.Printf("capacitor %d: weight = %v, mismatch factor = %v", index, sample.Weight(index), 1-factors[index])
	}
	logger.Printf("base capacitor: weight = %v, mismatch factor = %v", sample.Base(), 1-factors[sample.Len()])
}
