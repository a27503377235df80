package main

import (
	"flag"
	"os"

	"github.com/obsidianstack/sensorfusion/internal/config"
)

// cliFlags holds parsed command-line options. set records which flags were
// given explicitly so only those override the config.
type cliFlags struct {
	configPath string
	input      string
	output     string
	metrics    string
	high       float64
	low        float64
	stuck      int
	qSupport   int
	principal  int
	watch      bool
	selfCheck  bool

	set map[string]bool
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet("sensorfusion", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&f.configPath, "config", config.DefaultConfigPath, "path to config file")
	fs.StringVar(&f.input, "f", "", "input CSV file")
	fs.StringVar(&f.output, "o", "", "report file, appended to")
	fs.StringVar(&f.metrics, "metrics", "", "Prometheus textfile snapshot path")
	fs.Float64Var(&f.high, "u", 0, "upper limit above which a sensor is out of range")
	fs.Float64Var(&f.low, "l", 0, "lower limit below which a sensor is out of range")
	fs.IntVar(&f.stuck, "s", 0, "minutes without an update before a sensor is stuck")
	fs.IntVar(&f.qSupport, "q", 0, "q-support percentage (0-100) for outlier elimination")
	fs.IntVar(&f.principal, "p", 0, "principal component ratio percentage (0-100)")
	fs.BoolVar(&f.watch, "watch", false, "rerun when the config or input file changes")
	fs.BoolVar(&f.selfCheck, "t", false, "run the built-in scenario checks and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// apply overwrites cfg with every explicitly set flag.
func (f *cliFlags) apply(cfg *config.Config) {
	if f.set["f"] {
		cfg.InputPath = f.input
	}
	if f.set["o"] {
		cfg.OutputPath = f.output
	}
	if f.set["metrics"] {
		cfg.MetricsPath = f.metrics
	}
	if f.set["u"] {
		v := f.high
		cfg.Limits.High = &v
	}
	if f.set["l"] {
		v := f.low
		cfg.Limits.Low = &v
	}
	if f.set["s"] {
		v := f.stuck
		cfg.StuckThreshold = &v
	}
	if f.set["q"] {
		cfg.Fusion.QSupportValue = f.qSupport
	}
	if f.set["p"] {
		cfg.Fusion.PrincipalComponentRatio = f.principal
	}
}
