// Package nonlinearity measures the static differential and integral
// nonlinearity of a converter by sweeping an oversampled ramp through it.
package nonlinearity

import (
	"log"
	"math"
	"sync"

	adc "github.com/hammal/saradc"
	"github.com/hammal/saradc/signal"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidConfig      = errors.New("invalid tester configuration")
	ErrResolutionMismatch = errors.New("tester resolution does not match converter")
)

// maxResolution bounds the sweep length to something that fits in memory.
const maxResolution = 24

// Tester is the static nonlinearity test bench.
type Tester struct {
	// Resolution in bits, must equal the resolution of the converter under test
	Resolution int
	// Reference voltage, the sweep covers [-Reference, Reference]
	Reference float64
	// Number of sweep points per LSB
	OverResolution int
	// Number of goroutines converting the sweep, values below 2 run serially
	Workers int
	// Optional logger for monotonicity violations
	Logger *log.Logger
}

// NewTester returns a tester with an over resolution of four.
func NewTester(resolution int, reference float64) *Tester {
	return &Tester{
		Resolution:     resolution,
		Reference:      reference,
		OverResolution: 4,
		Workers:        1,
	}
}

// SetOverResolution sets the number of sweep points per LSB.
func (t *Tester) SetOverResolution(overResolution int) {
	t.OverResolution = overResolution
}

// LSB is the ideal code width 2 Reference / 2^Resolution. It is NaN for a
// resolution Measure would reject.
func (t *Tester) LSB() float64 {
	if t.Resolution < 1 || t.Resolution > maxResolution {
		return math.NaN()
	}
	return 2 * t.Reference / float64(int(1)<<uint(t.Resolution))
}

func (t *Tester) validate(a adc.ADC) error {
	switch {
	case a == nil:
		return errors.Wrap(ErrInvalidConfig, "no converter")
	case t.Resolution < 1 || t.Resolution > maxResolution:
		return errors.Wrapf(ErrInvalidConfig, "resolution %d", t.Resolution)
	case !(t.Reference > 0) || math.IsInf(t.Reference, 0):
		return errors.Wrapf(ErrInvalidConfig, "reference voltage %v", t.Reference)
	case t.OverResolution < 1:
		return errors.Wrapf(ErrInvalidConfig, "over resolution %d", t.OverResolution)
	case a.Resolution() != t.Resolution:
		return errors.Wrapf(ErrResolutionMismatch, "tester %d bits, converter %d bits", t.Resolution, a.Resolution())
	}
	return nil
}

// Measure sweeps 2^Resolution * OverResolution + 1 points from -Reference
// upwards in steps of LSB / OverResolution and reduces the resulting code
// trace to DNL and INL. The converter must not be modified while Measure
// runs.
func (t *Tester) Measure(a adc.ADC) (*Result, error) {
	if err := t.validate(a); err != nil {
		return nil, err
	}
	codes := 1 << uint(t.Resolution)
	lsb := t.LSB()
	step := lsb / float64(t.OverResolution)
	input := signal.Sample(signal.NewRamp(-t.Reference, step), codes*t.OverResolution+1)

	trace := t.trace(a, input)
	res := reduce(input, trace, codes, lsb)

	if t.Logger != nil {
		for _, v := range res.Violations {
			if v.OutOfRange {
				t.Logger.Printf("[Error]: output code %d out of range at vin = %v", v.To, v.Voltage)
				continue
			}
			t.Logger.Printf("[Error]: output code decreased from %d to %d at vin = %v", v.From, v.To, v.Voltage)
		}
		if len(res.Violations) > 0 {
			t.Logger.Printf("%d monotonicity violations in %d sweep points", len(res.Violations), len(trace))
		}
	}
	return res, nil
}

// trace converts every sweep point. The conversions are independent, so they
// are split across Workers goroutines.
func (t *Tester) trace(a adc.ADC, input mat.Vector) []int {
	n := input.Len()
	res := make([]int, n)
	workers := t.Workers
	if workers > n {
		workers = n
	}
	if workers < 2 {
		for index := 0; index < n; index++ {
			res[index] = a.ConvertToDecimal(input.AtVec(index))
		}
		return res
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for index := start; index < end; index++ {
				res[index] = a.ConvertToDecimal(input.AtVec(index))
			}
		}(start, end)
	}
	wg.Wait()
	return res
}
