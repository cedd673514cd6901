// Command sarnl measures the static nonlinearity of a behavioural SAR ADC,
// either for a single mismatched converter or as a Monte-Carlo run.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	adc "github.com/hammal/saradc"
	"github.com/hammal/saradc/capacitor"
	"github.com/hammal/saradc/figure"
	"github.com/hammal/saradc/montecarlo"
	"github.com/hammal/saradc/nonlinearity"
	"github.com/pkg/errors"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/pflag"
	"gonum.org/v1/plot/vg"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stderr, "sarnl: ", 0)
	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "sarnl: %s\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	seed, err := parseSeed(cfg.MustGet("seed").Int())
	if err != nil {
		return err
	}
	sys := adc.System{
		Reference:       cfg.MustGet("reference").Float(),
		Bits:            cfg.MustGet("bits").Int(),
		Threshold:       cfg.MustGet("threshold").Float(),
		BaseCapacitance: cfg.MustGet("base").Float(),
		Seed:            seed,
	}
	if err := sys.Validate(); err != nil {
		return err
	}
	weights, err := parseWeights(cfg.MustGet("weights").String())
	if err != nil {
		return err
	}
	verbose := cfg.MustGet("verbose").Bool()

	tester := nonlinearity.NewTester(sys.Bits, sys.Reference)
	tester.SetOverResolution(cfg.MustGet("oversample").Int())
	if verbose {
		tester.Logger = logger
	}

	var factory montecarlo.Factory
	switch model := cfg.MustGet("model").String(); model {
	case "cdac":
		factory = montecarlo.CDACFactory(sys, weights)
	case "algorithm":
		if len(weights) > 0 {
			return errors.New("the algorithm model only supports binary weights")
		}
		factory = montecarlo.AlgorithmFactory(sys)
	default:
		return errors.Errorf("unknown model %q", model)
	}

	mismatch := cfg.MustGet("mismatch").Float()
	plotFile := cfg.MustGet("plot").String()
	trials := cfg.MustGet("trials").Int()
	if trials <= 1 {
		tester.Workers = cfg.MustGet("workers").Int()
		return single(factory, tester, mismatch, plotFile, verbose, logger)
	}
	mc := montecarlo.Config{
		Trials:   trials,
		Workers:  cfg.MustGet("workers").Int(),
		Mismatch: mismatch,
	}
	if verbose {
		mc.Logger = logger
	}
	return monteCarlo(mc, factory, tester, plotFile)
}

func single(factory montecarlo.Factory, tester *nonlinearity.Tester, mismatch float64, plotFile string, verbose bool, logger *log.Logger) error {
	converter, err := factory(0)
	if err != nil {
		return err
	}
	if l, ok := converter.(interface{ SetLogger(*log.Logger) }); ok && verbose {
		l.SetLogger(logger)
	}
	if a, ok := converter.(interface{ Array() *capacitor.Array }); ok && verbose {
		reportRedundancy(logger, a.Array())
	}
	converter.AddMismatch(mismatch)
	res, err := tester.Measure(converter)
	if err != nil {
		return err
	}
	fmt.Printf("Resolution %d bits, mismatch %g, over resolution %d\n", tester.Resolution, mismatch, tester.OverResolution)
	fmt.Printf("  max |DNL| = %.4f LSB\n", res.MaxAbsDNL())
	fmt.Printf("  max |INL| = %.4f LSB\n", res.MaxAbsINL())
	fmt.Printf("  monotonicity violations = %d\n", len(res.Violations))
	fmt.Printf("  missing codes = %d\n", len(res.MissingCodes()))
	if plotFile == "" {
		return nil
	}
	p, err := figure.Nonlinearity(res, "")
	if err != nil {
		return err
	}
	return figure.Save(p, 6*vg.Inch, 4*vg.Inch, plotFile)
}

func monteCarlo(mc montecarlo.Config, factory montecarlo.Factory, tester *nonlinearity.Tester, plotFile string) error {
	summary, err := montecarlo.Run(mc, tester, factory)
	if err != nil {
		return err
	}
	fmt.Printf("%d trials, resolution %d bits, mismatch %g\n", mc.Trials, tester.Resolution, mc.Mismatch)
	fmt.Printf("  max |DNL|: mean %.4f, std %.4f, p99 %.4f, worst %.4f LSB\n",
		summary.MeanMaxDNL, summary.StdMaxDNL, summary.P99MaxDNL, summary.WorstMaxDNL)
	fmt.Printf("  max |INL|: mean %.4f, std %.4f, p99 %.4f, worst %.4f LSB\n",
		summary.MeanMaxINL, summary.StdMaxINL, summary.P99MaxINL, summary.WorstMaxINL)
	fmt.Printf("  non monotonic converters = %d\n", summary.NonMonotonic)
	if plotFile == "" {
		return nil
	}
	p, err := figure.Histogram(summary.MaxDNL(), 20, "Max |DNL| per converter", "LSB")
	if err != nil {
		return err
	}
	return figure.Save(p, 6*vg.Inch, 4*vg.Inch, plotFile)
}

// reportRedundancy logs the per bit redundancy, negative entries are bits
// whose wrong decisions the lower bits cannot recover.
func reportRedundancy(logger *log.Logger, array *capacitor.Array) {
	for index, r := range array.Redundancy() {
		if r < 0 {
			logger.Printf("bit %d: weight = %v, redundancy = %v (not recoverable)", index, array.Weight(index), r)
			continue
		}
		logger.Printf("bit %d: weight = %v, redundancy = %v", index, array.Weight(index), r)
	}
}

// parseSeed rejects negative seeds instead of wrapping them around.
func parseSeed(seed int) (uint64, error) {
	if seed < 0 {
		return 0, errors.Errorf("seed must not be negative, got %d", seed)
	}
	return uint64(seed), nil
}

// parseWeights reads a comma separated weight list, empty means binary.
func parseWeights(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	weights := make([]float64, len(parts))
	for i, part := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "weight %q", part)
		}
		weights[i] = w
	}
	return weights, nil
}

func loadConfig() *config.Config {
	defaultConfig := map[string]interface{}{
		"bits":       12,
		"reference":  1.0,
		"threshold":  0.0,
		"base":       1.0,
		"mismatch":   0.005,
		"oversample": 32,
		"weights":    "", // comma separated, MSB first
		"model":      "cdac",
		"seed":       1,
		"trials":     1,
		"workers":    1,
		"plot":       "",
		"verbose":    false,
	}
	def := dict.New(dict.WithMap(defaultConfig))
	flags := []pflag.Flag{
		{Short: 'c', Name: "config-file"},
		{Short: 'v', Name: "verbose"},
	}
	cfg := config.New(
		pflag.New(pflag.WithFlags(flags)),
		env.New(env.WithEnvPrefix("SARNL_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "sarnl.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust)
	return cfg
}
