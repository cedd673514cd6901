package signal

// Ramp is a linear stimulus Start + Slope t.
type Ramp struct {
	Start float64
	Slope float64
}

// NewRamp returns the ramp that starts at start and rises by step per sample.
func NewRamp(start, step float64) Ramp {
	return Ramp{Start: start, Slope: step}
}

// Value returns t*Slope + Start.
func (r Ramp) Value(t float64) float64 {
	return t*r.Slope + r.Start
}
