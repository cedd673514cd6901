package sar

import (
	"log"
	"math/rand/v2"

	adc "github.com/hammal/saradc"
	"github.com/hammal/saradc/capacitor"
	"github.com/pkg/errors"
)

// CDAC is a SAR converter with separate ideal and real capacitor weights.
// The search runs against the real, possibly mismatched, weights while the
// decimal code and the reconstruction use the ideal ones. This is what makes
// redundant, non binary weightings usable.
type CDAC struct {
	reference float64
	threshold float64
	bits      int
	ideal     *capacitor.Array
	real      *capacitor.Sample
	src       rand.Source
	logger    *log.Logger
}

// NewCDAC returns a converter with binary ideal weights and no mismatch.
func NewCDAC(sys adc.System) (*CDAC, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	ideal, err := capacitor.Binary(sys.Bits, sys.BaseCapacitance)
	if err != nil {
		return nil, err
	}
	return &CDAC{
		reference: sys.Reference,
		threshold: sys.Threshold,
		bits:      sys.Bits,
		ideal:     ideal,
		real:      ideal.Nominal(),
		src:       rand.NewPCG(sys.Seed, sys.Seed),
	}, nil
}

// SetWeights installs a new ideal weighting, e.g. a redundant one. The
// weights must be integers so that ConvertToDecimal is exact. The real
// weights are reset to the new ideal ones.
func (c *CDAC) SetWeights(weights []float64) error {
	if len(weights) != c.bits {
		return errors.Wrapf(ErrWeightCount, "got %d weights for %d bits", len(weights), c.bits)
	}
	ideal, err := capacitor.NewArray(weights, c.ideal.Base())
	if err != nil {
		return err
	}
	if !ideal.IsIntegral() {
		return errors.Wrapf(ErrNonIntegralWeight, "weights %v", weights)
	}
	c.ideal = ideal
	c.real = ideal.Nominal()
	return nil
}

// SetReference sets the reference voltage.
func (c *CDAC) SetReference(voltage float64) { c.reference = voltage }

// SetSource replaces the random source used by AddMismatch.
func (c *CDAC) SetSource(src rand.Source) { c.src = src }

// SetLogger enables a per capacitor report on every AddMismatch.
func (c *CDAC) SetLogger(logger *log.Logger) { c.logger = logger }

// AddMismatch redraws the real weights from the ideal ones.
func (c *CDAC) AddMismatch(unitRelativeMismatch float64) {
	c.real = c.ideal.Mismatch(unitRelativeMismatch, c.src)
	reportMismatch(c.logger, c.ideal, c.real)
}

// ConvertToBitstream runs the search against the real weights.
func (c *CDAC) ConvertToBitstream(voltage float64) adc.BitStream {
	return search(voltage, c.reference, c.threshold, c.real.Vector(), c.real.Sum())
}

// ConvertToDecimal decodes the bit stream with the ideal weights.
func (c *CDAC) ConvertToDecimal(voltage float64) int {
	return int(decode(c.ConvertToBitstream(voltage), c.ideal.Vector()))
}

// Reconstruct maps a bit stream back to a voltage using the ideal weights.
func (c *CDAC) Reconstruct(bits adc.BitStream) float64 {
	return reconstruct(bits, c.reference, c.ideal.Vector(), c.ideal.Sum())
}

func (c *CDAC) Resolution() int { return c.bits }

func (c *CDAC) Reference() float64 { return c.reference }

// Weights returns a copy of the ideal weights.
func (c *CDAC) Weights() []float64 { return c.ideal.Weights() }

// RealWeights returns a copy of the real weights.
func (c *CDAC) RealWeights() []float64 { return c.real.Weights() }

// Array exposes the ideal configuration.
func (c *CDAC) Array() *capacitor.Array { return c.ideal }
