// Package montecarlo repeats static nonlinearity measurements over many
// independently mismatched converters and summarises the spread.
package montecarlo

import (
	"log"
	"math/rand/v2"
	"sort"
	"sync"

	adc "github.com/hammal/saradc"
	"github.com/hammal/saradc/nonlinearity"
	"github.com/hammal/saradc/sar"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

var ErrInvalidConfig = errors.New("invalid monte carlo configuration")

// Factory builds the converter for one trial. Every trial must get its own
// instance with its own random source.
type Factory func(trial int) (adc.Mismatcher, error)

// Config holds the parameters of a Monte-Carlo run.
type Config struct {
	// Number of converters to draw
	Trials int
	// Number of trials measured concurrently
	Workers int
	// Unit relative capacitor mismatch
	Mismatch float64
	// Optional progress logger
	Logger *log.Logger
}

// Trial is the outcome of one measurement.
type Trial struct {
	Index        int
	MaxDNL       float64
	MaxINL       float64
	Violations   int
	MissingCodes int
}

// Summary aggregates all trials.
type Summary struct {
	Trials       []Trial
	MeanMaxDNL   float64
	StdMaxDNL    float64
	MeanMaxINL   float64
	StdMaxINL    float64
	WorstMaxDNL  float64
	WorstMaxINL  float64
	P99MaxDNL    float64
	P99MaxINL    float64
	NonMonotonic int
}

// CDACFactory draws dual weight converters built from sys. Non empty weights
// replace the binary weighting. Trial i uses the source PCG(sys.Seed, i).
func CDACFactory(sys adc.System, weights []float64) Factory {
	return func(trial int) (adc.Mismatcher, error) {
		c, err := sar.NewCDAC(sys)
		if err != nil {
			return nil, err
		}
		if len(weights) > 0 {
			if err := c.SetWeights(weights); err != nil {
				return nil, err
			}
		}
		c.SetSource(rand.NewPCG(sys.Seed, uint64(trial)))
		return c, nil
	}
}

// AlgorithmFactory draws single weight binary converters built from sys.
func AlgorithmFactory(sys adc.System) Factory {
	return func(trial int) (adc.Mismatcher, error) {
		m, err := sar.NewAlgorithmModel(sys)
		if err != nil {
			return nil, err
		}
		m.SetSource(rand.NewPCG(sys.Seed, uint64(trial)))
		return m, nil
	}
}

// Run measures cfg.Trials converters from factory with tester.
func Run(cfg Config, tester *nonlinearity.Tester, factory Factory) (*Summary, error) {
	switch {
	case cfg.Trials < 1:
		return nil, errors.Wrapf(ErrInvalidConfig, "%d trials", cfg.Trials)
	case cfg.Mismatch < 0:
		return nil, errors.Wrapf(ErrInvalidConfig, "mismatch %v", cfg.Mismatch)
	case tester == nil || factory == nil:
		return nil, errors.Wrap(ErrInvalidConfig, "missing tester or factory")
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	trials := make([]Trial, cfg.Trials)
	jobs := make(chan int)
	errs := make(chan error, cfg.Trials)
	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				trial, err := runTrial(index, cfg.Mismatch, tester, factory)
				if err != nil {
					errs <- errors.Wrapf(err, "trial %d", index)
					continue
				}
				trials[index] = trial
				if cfg.Logger != nil {
					cfg.Logger.Printf("trial %d: max |DNL| = %.4f LSB, max |INL| = %.4f LSB, %d violations",
						index, trial.MaxDNL, trial.MaxINL, trial.Violations)
				}
			}
		}()
	}
	for index := 0; index < cfg.Trials; index++ {
		jobs <- index
	}
	close(jobs)
	wg.Wait()
	close(errs)
	if err, ok := <-errs; ok {
		return nil, err
	}
	return summarize(trials), nil
}

func runTrial(index int, mismatch float64, tester *nonlinearity.Tester, factory Factory) (Trial, error) {
	converter, err := factory(index)
	if err != nil {
		return Trial{}, err
	}
	converter.AddMismatch(mismatch)
	res, err := tester.Measure(converter)
	if err != nil {
		return Trial{}, err
	}
	return Trial{
		Index:        index,
		MaxDNL:       res.MaxAbsDNL(),
		MaxINL:       res.MaxAbsINL(),
		Violations:   len(res.Violations),
		MissingCodes: len(res.MissingCodes()),
	}, nil
}

func summarize(trials []Trial) *Summary {
	dnl := make([]float64, len(trials))
	inl := make([]float64, len(trials))
	res := &Summary{Trials: trials}
	for index, trial := range trials {
		dnl[index] = trial.MaxDNL
		inl[index] = trial.MaxINL
		if trial.Violations > 0 {
			res.NonMonotonic++
		}
	}
	res.MeanMaxDNL, res.StdMaxDNL, res.WorstMaxDNL, res.P99MaxDNL = describe(dnl)
	res.MeanMaxINL, res.StdMaxINL, res.WorstMaxINL, res.P99MaxINL = describe(inl)
	return res
}

// describe returns mean, standard deviation, maximum and 99th percentile.
func describe(data []float64) (mean, std, worst, p99 float64) {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		std = stat.StdDev(sorted, nil)
	}
	worst = sorted[len(sorted)-1]
	p99 = stat.Quantile(0.99, stat.Empirical, sorted, nil)
	return mean, std, worst, p99
}

// MaxDNL returns the per trial max |DNL| in trial order.
func (s *Summary) MaxDNL() []float64 {
	res := make([]float64, len(s.Trials))
	for index, trial := range s.Trials {
		res[index] = trial.MaxDNL
	}
	return res
}

// MaxINL returns the per trial max |INL| in trial order.
func (s *Summary) MaxINL() []float64 {
	res := make([]float64, len(s.Trials))
	for index, trial := range s.Trials {
		res[index] = trial.MaxINL
	}
	return res
}
