package adc

import (
	"strings"
)

// BitStream is a conversion result with the most significant bit first.
type BitStream []uint

// Uint interprets the bit stream as a plain binary number.
func (b BitStream) Uint() uint {
	var sum uint
	for _, bit := range b {
		sum = sum<<1 + bit
	}
	return sum
}

func (b BitStream) String() string {
	var sb strings.Builder
	for _, bit := range b {
		if bit > 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// ADC is the capability set shared by all converter models. The static
// nonlinearity tester only ever talks to a converter through this interface.
type ADC interface {
	// Set the reference voltage. The converter covers [-voltage, +voltage].
	SetReference(voltage float64)
	// Convert an input voltage into a bit stream, MSB first.
	ConvertToBitstream(voltage float64) BitStream
	// Convert an input voltage into the converters decimal output code.
	ConvertToDecimal(voltage float64) int
	// Reconstruct the ideal voltage of a bit stream.
	Reconstruct(bits BitStream) float64
	// Number of bits produced per conversion
	Resolution() int
}

// Mismatcher is an ADC whose capacitor array can be redrawn with random
// mismatch.
type Mismatcher interface {
	ADC
	AddMismatch(unitRelativeMismatch float64)
}
