package nonlinearity

import (
	"github.com/hammal/saradc/gonumExtensions"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Violation is a sweep point whose code broke monotonicity. Either the code
// decreased although the input increased, or it fell outside the code range.
type Violation struct {
	// Sweep point index
	Index int
	// Input voltage at the sweep point
	Voltage float64
	// Code of the previous sweep point
	From int
	// Code at this sweep point
	To int
	// Set if To is not a valid code
	OutOfRange bool
}

// Result holds one static nonlinearity measurement.
type Result struct {
	// Ideal code width
	LSB float64
	// Sweep input voltages
	Input []float64
	// Output code for every sweep point
	Trace []int
	// Input voltage where each code was first entered, 2^N + 1 entries
	Boundaries []float64
	// Differential nonlinearity in LSB, one entry per code. Missing codes read -1.
	DNL []float64
	// Integral nonlinearity in LSB, the running sum of DNL
	INL []float64
	// Monotonicity violations in sweep order
	Violations []Violation
}

// reduce walks the code trace once. A code's boundary is written the first
// time the sweep rises above every code seen so far, and DNL[c-1] is the
// width of code c-1 at that moment. Codes skipped by a jump get a zero width
// boundary. Decreasing codes are only recorded as violations.
func reduce(input mat.Vector, trace []int, codes int, lsb float64) *Result {
	res := &Result{
		LSB:        lsb,
		Input:      make([]float64, input.Len()),
		Trace:      trace,
		Boundaries: make([]float64, codes+1),
		DNL:        make([]float64, codes),
		INL:        make([]float64, codes),
	}
	for index := range res.Input {
		res.Input[index] = input.AtVec(index)
	}

	highest := -1
	record := func(code int, voltage float64) {
		for c := highest + 1; c <= code; c++ {
			res.Boundaries[c] = voltage
			if c > 0 {
				res.DNL[c-1] = (res.Boundaries[c]-res.Boundaries[c-1])/lsb - 1
			}
		}
		if code > highest {
			highest = code
		}
	}

	started := false
	previous := 0
	for index, code := range trace {
		voltage := res.Input[index]
		if code < 0 || code > codes {
			res.Violations = append(res.Violations, Violation{
				Index:      index,
				Voltage:    voltage,
				From:       previous,
				To:         code,
				OutOfRange: true,
			})
			continue
		}
		switch {
		case !started:
			started = true
			record(code, voltage)
		case code > previous:
			record(code, voltage)
		case code < previous:
			res.Violations = append(res.Violations, Violation{
				Index:   index,
				Voltage: voltage,
				From:    previous,
				To:      code,
			})
		}
		previous = code
	}

	floats.CumSum(res.INL, res.DNL)
	return res
}

// Codes returns the code indices 0 ... 2^N - 1 matching DNL and INL.
func (r *Result) Codes() []int {
	res := make([]int, len(r.DNL))
	for index := range res {
		res[index] = index
	}
	return res
}

// MaxAbsDNL is max |DNL|.
func (r *Result) MaxAbsDNL() float64 { return gonumExtensions.MaxAbs(r.DNL) }

// MaxAbsINL is max |INL|.
func (r *Result) MaxAbsINL() float64 { return gonumExtensions.MaxAbs(r.INL) }

// Monotonic reports whether the sweep produced no violations.
func (r *Result) Monotonic() bool { return len(r.Violations) == 0 }

// MissingCodes lists the codes below the highest observed code that never
// appeared in the trace.
func (r *Result) MissingCodes() []int {
	seen := make([]bool, len(r.Boundaries))
	highest := -1
	for _, code := range r.Trace {
		if code < 0 || code >= len(seen) {
			continue
		}
		seen[code] = true
		if code > highest {
			highest = code
		}
	}
	var res []int
	for code := 0; code < highest; code++ {
		if !seen[code] {
			res = append(res, code)
		}
	}
	return res
}
