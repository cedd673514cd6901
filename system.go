package adc

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidSystem is returned when a System cannot describe a converter.
var ErrInvalidSystem = errors.New("invalid system")

// System struct contains the construction parameters of a converter
type System struct {
	// Reference voltage, the converter spans +/- Reference
	Reference float64
	// Number of bits
	Bits int
	// Comparator threshold
	Threshold float64
	// Capacitance of the unit capacitor that stays connected to ground
	BaseCapacitance float64
	// Seed of the random source used for mismatch
	Seed uint64
}

// DefaultSystem returns a System with a 1 V reference, zero threshold and a
// single unit base capacitor.
func DefaultSystem(bits int) System {
	return System{
		Reference:       1,
		Bits:            bits,
		Threshold:       0,
		BaseCapacitance: 1,
		Seed:            1,
	}
}

// Validate checks that the parameters are usable.
func (s System) Validate() error {
	if s.Bits < 1 {
		return errors.Wrapf(ErrInvalidSystem, "bit count %d", s.Bits)
	}
	if !(s.Reference > 0) || math.IsInf(s.Reference, 0) {
		return errors.Wrapf(ErrInvalidSystem, "reference voltage %v", s.Reference)
	}
	if math.IsNaN(s.Threshold) || math.IsInf(s.Threshold, 0) {
		return errors.Wrapf(ErrInvalidSystem, "comparator threshold %v", s.Threshold)
	}
	if !(s.BaseCapacitance > 0) || math.IsInf(s.BaseCapacitance, 0) {
		return errors.Wrapf(ErrInvalidSystem, "base capacitance %v", s.BaseCapacitance)
	}
	return nil
}
