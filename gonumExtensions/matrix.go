package gonumExtensions

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Full returns a vector of length n filled with value
func Full(n int, value float64) *mat.VecDense {
	data := make([]float64, n)
	for index := range data {
		data[index] = value
	}
	return mat.NewVecDense(n, data)
}

// Powers returns the descending powers of base, i.e.
// base^(n-1), base^(n-2), ..., base^0
func Powers(n int, base float64) *mat.VecDense {
	data := make([]float64, n)
	for index := range data {
		data[index] = math.Pow(base, float64(n-index-1))
	}
	return mat.NewVecDense(n, data)
}

// NANORINF checks if there are any NAN or INF in vector
func NANORINF(vector mat.Vector) bool {
	for row := 0; row < vector.Len(); row++ {
		if math.IsNaN(vector.AtVec(row)) || math.IsInf(vector.AtVec(row), 0) {
			return true
		}
	}
	return false
}

// MaxAbs returns the largest absolute value of data, zero for empty data.
func MaxAbs(data []float64) float64 {
	var res float64
	for _, value := range data {
		res = math.Max(res, math.Abs(value))
	}
	return res
}
