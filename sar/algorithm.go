package sar

import (
	"log"
	"math/rand/v2"

	adc "github.com/hammal/saradc"
	"github.com/hammal/saradc/capacitor"
)

// AlgorithmModel is the plain binary SAR. A single capacitor array backs the
// search as well as the reconstruction, so mismatch shows up in both.
type AlgorithmModel struct {
	reference float64
	threshold float64
	nominal   *capacitor.Array
	weights   *capacitor.Sample
	src       rand.Source
	logger    *log.Logger
}

// NewAlgorithmModel returns a binary weighted converter without mismatch.
func NewAlgorithmModel(sys adc.System) (*AlgorithmModel, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	nominal, err := capacitor.Binary(sys.Bits, sys.BaseCapacitance)
	if err != nil {
		return nil, err
	}
	return &AlgorithmModel{
		reference: sys.Reference,
		threshold: sys.Threshold,
		nominal:   nominal,
		weights:   nominal.Nominal(),
		src:       rand.NewPCG(sys.Seed, sys.Seed),
	}, nil
}

// SetReference sets the reference voltage.
func (m *AlgorithmModel) SetReference(voltage float64) { m.reference = voltage }

// SetSource replaces the random source used by AddMismatch.
func (m *AlgorithmModel) SetSource(src rand.Source) { m.src = src }

// SetLogger enables a per capacitor report on every AddMismatch.
func (m *AlgorithmModel) SetLogger(logger *log.Logger) { m.logger = logger }

// AddMismatch redraws the shared weights from the nominal binary ones.
func (m *AlgorithmModel) AddMismatch(unitRelativeMismatch float64) {
	m.weights = m.nominal.Mismatch(unitRelativeMismatch, m.src)
	reportMismatch(m.logger, m.nominal, m.weights)
}

func (m *AlgorithmModel) ConvertToBitstream(voltage float64) adc.BitStream {
	return search(voltage, m.reference, m.threshold, m.weights.Vector(), m.weights.Sum())
}

// ConvertToDecimal reads the bit stream as a binary number.
func (m *AlgorithmModel) ConvertToDecimal(voltage float64) int {
	return int(m.ConvertToBitstream(voltage).Uint())
}

// Reconstruct uses the same, possibly mismatched, weights as the search.
func (m *AlgorithmModel) Reconstruct(bits adc.BitStream) float64 {
	return reconstruct(bits, m.reference, m.weights.Vector(), m.weights.Sum())
}

func (m *AlgorithmModel) Resolution() int { return m.nominal.Len() }

func (m *AlgorithmModel) Reference() float64 { return m.reference }

// Weights returns a copy of the weights currently in use.
func (m *AlgorithmModel) Weights() []float64 { return m.weights.Weights() }

// RealWeights is an alias of Weights, there is only one array.
func (m *AlgorithmModel) RealWeights() []float64 { return m.weights.Weights() }
