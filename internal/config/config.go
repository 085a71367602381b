package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTMin                = 0.2
	DefaultTMax                = 4.0
	DefaultTStep               = 0.1
	DefaultFlipsToSkip         = 300_000
	DefaultMeasurementsPerT    = 2_000
	DefaultAttemptsPerFlip     = 20
	DefaultLatticeSize         = 50
	DefaultJ                   = 1.0
	DefaultK                   = 1.0
	DefaultResultsDir          = "results"
	DefaultSusceptibilitySrc   = "energy"
	DefaultSusceptibilityScale = "raw"
)

// Config holds every simulation parameter of a sweep. It is passed by value
// and never modified once a run starts.
type Config struct {
	Temperature         TemperatureConfig `yaml:"temperature"`
	FlipsToSkip         int               `yaml:"flips_to_skip"`
	MeasurementsPerT    int               `yaml:"measurements_per_t"`
	FlipsPerMeasurement int               `yaml:"flips_per_measurement"`
	AttemptsPerFlip     int               `yaml:"attempts_per_flip"`
	LatticeSize         int               `yaml:"lattice_size"`
	J                   float64           `yaml:"j"`
	K                   float64           `yaml:"k"`
	Seed                int64             `yaml:"seed"`
	Workers             int               `yaml:"workers"`
	Observables         ObservablesConfig `yaml:"observables"`
	ResultsDir          string            `yaml:"results_dir"`
}

type TemperatureConfig struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// ObservablesConfig selects how the susceptibility-like quantity X is
// derived: from the energy or order parameter series, raw or divided by k*T.
type ObservablesConfig struct {
	SusceptibilitySource  string `yaml:"susceptibility_source"`
	SusceptibilityScaling string `yaml:"susceptibility_scaling"`
}

func DefaultConfig() *Config {
	return &Config{
		Temperature: TemperatureConfig{
			Min:  DefaultTMin,
			Max:  DefaultTMax,
			Step: DefaultTStep,
		},
		FlipsToSkip:         DefaultFlipsToSkip,
		MeasurementsPerT:    DefaultMeasurementsPerT,
		FlipsPerMeasurement: DefaultLatticeSize * DefaultLatticeSize,
		AttemptsPerFlip:     DefaultAttemptsPerFlip,
		LatticeSize:         DefaultLatticeSize,
		J:                   DefaultJ,
		K:                   DefaultK,
		Observables: ObservablesConfig{
			SusceptibilitySource:  DefaultSusceptibilitySrc,
			SusceptibilityScaling: DefaultSusceptibilityScale,
		},
		ResultsDir: DefaultResultsDir,
	}
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MeasurementTotal is the number of measurements a full sweep over n
// temperatures takes.
func (c *Config) MeasurementTotal(n int) int64 {
	return int64(c.MeasurementsPerT) * int64(n)
}
