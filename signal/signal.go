package signal

import (
	"gonum.org/v1/gonum/mat"
)

// Signal holds the stimulus interface. The argument is the sample index
// expressed as a float.
type Signal interface {
	Value(float64) float64
}

// Sample evaluates s at 0, 1, ..., n-1 and returns the values as a vector.
func Sample(s Signal, n int) *mat.VecDense {
	data := make([]float64, n)
	for index := range data {
		data[index] = s.Value(float64(index))
	}
	return mat.NewVecDense(n, data)
}
