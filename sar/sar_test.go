package sar

import (
	"bytes"
	"log"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	adc "github.com/hammal/saradc"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

func allBitStreams(bits int) []adc.BitStream {
	res := make([]adc.BitStream, 1<<uint(bits))
	for code := range res {
		stream := make(adc.BitStream, bits)
		for index := range stream {
			stream[index] = uint(code>>uint(bits-index-1)) & 1
		}
		res[code] = stream
	}
	return res
}

func equalBits(a, b adc.BitStream) bool {
	if len(a) != len(b) {
		return false
	}
	for index := range a {
		if a[index] != b[index] {
			return false
		}
	}
	return true
}

func newConverters(t *testing.T, sys adc.System) []adc.Mismatcher {
	cdac, err := NewCDAC(sys)
	if err != nil {
		t.Fatal(err)
	}
	model, err := NewAlgorithmModel(sys)
	if err != nil {
		t.Fatal(err)
	}
	return []adc.Mismatcher{cdac, model}
}

func TestRoundTrip(t *testing.T) {
	for _, converter := range newConverters(t, adc.DefaultSystem(8)) {
		for _, bits := range allBitStreams(8) {
			res := converter.ConvertToBitstream(converter.Reconstruct(bits))
			if !equalBits(res, bits) {
				t.Errorf("%T: %v reconstructs to %v", converter, bits, res)
			}
		}
	}
}

func TestReconstructEndpoints(t *testing.T) {
	c, _ := NewCDAC(adc.DefaultSystem(4))
	if v := c.Reconstruct(adc.BitStream{0, 0, 0, 0}); v != -15./16. {
		t.Errorf("Reconstruct(0000) = %v", v)
	}
	if v := c.Reconstruct(adc.BitStream{1, 1, 1, 1}); v != 15./16. {
		t.Errorf("Reconstruct(1111) = %v", v)
	}
	c.SetReference(2)
	if v := c.Reconstruct(adc.BitStream{1, 0, 0, 0}); v != 2*(8.-7.)/16. {
		t.Errorf("Reconstruct(1000) at 2 V = %v", v)
	}
}

func TestConvertToDecimalIdeal(t *testing.T) {
	c, _ := NewCDAC(adc.DefaultSystem(4))
	tests := []struct {
		voltage float64
		code    int
	}{
		{-1, 0},
		{-0.875, 1},
		{-0.0001, 7},
		{0, 8},
		{0.5, 12},
		{0.99, 15},
	}
	for _, test := range tests {
		if code := c.ConvertToDecimal(test.voltage); code != test.code {
			t.Errorf("ConvertToDecimal(%v) = %v, expected %v", test.voltage, code, test.code)
		}
	}
}

func TestDecimalRange(t *testing.T) {
	sys := adc.DefaultSystem(6)
	for _, converter := range newConverters(t, sys) {
		converter.AddMismatch(0.05)
		for k := 0; k < 2000; k++ {
			v := -1 + 2*float64(k)/2000
			code := converter.ConvertToDecimal(v)
			if code < 0 || code > 63 {
				t.Fatalf("%T: code %v out of range for %v V", converter, code, v)
			}
		}
	}
}

func TestThreshold(t *testing.T) {
	sys := adc.DefaultSystem(4)
	sys.Threshold = 0.0625
	c, _ := NewCDAC(sys)
	if code := c.ConvertToDecimal(0.0624); code != 7 {
		t.Errorf("Below shifted threshold gives %v, expected 7", code)
	}
	if code := c.ConvertToDecimal(0.0625); code != 8 {
		t.Errorf("At shifted threshold gives %v, expected 8", code)
	}
}

func TestSetWeights(t *testing.T) {
	c, _ := NewCDAC(adc.DefaultSystem(4))
	err := c.SetWeights([]float64{6, 4, 3})
	if errors.Cause(err) != ErrWeightCount {
		t.Errorf("Short weights gave %v", err)
	}
	err = c.SetWeights([]float64{6, 4, 3, 3, 1})
	if errors.Cause(err) != ErrWeightCount {
		t.Errorf("Long weights gave %v", err)
	}
	if !floats.Equal(c.Weights(), []float64{8, 4, 2, 1}) {
		t.Error("Rejected weights were installed")
	}

	c.AddMismatch(0.1)
	if err := c.SetWeights([]float64{6, 4, 3, 3}); err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(c.Weights(), []float64{6, 4, 3, 3}) {
		t.Errorf("Ideal weights %v", c.Weights())
	}
	if !floats.Equal(c.RealWeights(), c.Weights()) {
		t.Errorf("Real weights %v not reset", c.RealWeights())
	}
	if c.Array().Sum() != 17 {
		t.Errorf("Ideal sum %v, expected 17", c.Array().Sum())
	}
	if v := c.Reconstruct(adc.BitStream{1, 1, 1, 1}); v != 16./17. {
		t.Errorf("Reconstruct(1111) = %v", v)
	}
	if err := c.SetWeights([]float64{6, 4, -3, 3}); err == nil {
		t.Error("Negative weight accepted")
	}
}

// Fractional weights would fold distinct bit patterns onto one truncated
// decimal code, so they are rejected and the previous weights stay.
func TestSetWeightsNonIntegral(t *testing.T) {
	c, _ := NewCDAC(adc.DefaultSystem(4))
	err := c.SetWeights([]float64{4.5, 2.5, 1.5, 0.5})
	if errors.Cause(err) != ErrNonIntegralWeight {
		t.Errorf("Fractional weights gave %v", err)
	}
	if !floats.Equal(c.Weights(), []float64{8, 4, 2, 1}) {
		t.Errorf("Rejected weights were installed: %v", c.Weights())
	}
	if err := c.SetWeights([]float64{7, 4, 2, 1}); err != nil {
		t.Errorf("Integral weights rejected: %v", err)
	}
}

func TestAddMismatchKeepsIdeal(t *testing.T) {
	c, _ := NewCDAC(adc.DefaultSystem(8))
	c.SetSource(rand.NewPCG(11, 12))
	c.AddMismatch(0.02)
	first := c.RealWeights()
	if !floats.Equal(c.Weights(), []float64{128, 64, 32, 16, 8, 4, 2, 1}) {
		t.Errorf("Ideal weights changed to %v", c.Weights())
	}
	if floats.Equal(first, c.Weights()) {
		t.Error("Real weights unchanged by mismatch")
	}
	c.AddMismatch(0.02)
	if floats.Equal(first, c.RealWeights()) {
		t.Error("Second mismatch reproduced the first draw")
	}
	c.AddMismatch(0)
	if !floats.Equal(c.RealWeights(), c.Weights()) {
		t.Error("Zero mismatch did not restore ideal weights")
	}
}

func TestMismatchSeeded(t *testing.T) {
	sys := adc.DefaultSystem(10)
	sys.Seed = 42
	a, _ := NewCDAC(sys)
	b, _ := NewCDAC(sys)
	a.AddMismatch(0.01)
	b.AddMismatch(0.01)
	if !floats.Equal(a.RealWeights(), b.RealWeights()) {
		t.Error("Equal seeds produced different mismatch")
	}
}

func TestAlgorithmModel(t *testing.T) {
	m, _ := NewAlgorithmModel(adc.DefaultSystem(4))
	if m.Resolution() != 4 {
		t.Errorf("Resolution %v", m.Resolution())
	}
	for _, bits := range allBitStreams(4) {
		v := m.Reconstruct(bits)
		if code := m.ConvertToDecimal(v); uint(code) != bits.Uint() {
			t.Errorf("Code %v for %v", code, bits)
		}
	}
	m.SetSource(rand.NewPCG(1, 1))
	m.AddMismatch(0.05)
	ideal := []float64{8, 4, 2, 1}
	if floats.Equal(m.Weights(), ideal) {
		t.Error("Mismatch did not change the shared weights")
	}
	v := m.Reconstruct(adc.BitStream{1, 1, 1, 1})
	if math.Abs(v-15./16.) < 1e-12 {
		t.Error("Reconstruction ignores mismatch")
	}
}

func TestInvalidSystem(t *testing.T) {
	sys := adc.DefaultSystem(0)
	if _, err := NewCDAC(sys); errors.Cause(err) != adc.ErrInvalidSystem {
		t.Errorf("Zero bits gave %v", err)
	}
	sys = adc.DefaultSystem(4)
	sys.Reference = -1
	if _, err := NewAlgorithmModel(sys); errors.Cause(err) != adc.ErrInvalidSystem {
		t.Errorf("Negative reference gave %v", err)
	}
}

func TestMismatchReport(t *testing.T) {
	var buf bytes.Buffer
	c, _ := NewCDAC(adc.DefaultSystem(3))
	c.SetLogger(log.New(&buf, "", 0))
	c.AddMismatch(0.01)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 report lines, got %v:\n%v", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[3], "base capacitor") {
		t.Errorf("Last line %q", lines[3])
	}
}
