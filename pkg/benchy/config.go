package benchy

import (
	"time"

	"github.com/polybase/zk-benchmarks/internal/config"
)

// DefaultIterations caps adaptive iteration when no count is given.
const DefaultIterations = 10

// Config is fixed when a Benchmark is built and copied into every group.
type Config struct {
	// Quick runs a single iteration of the first parameter only.
	Quick bool

	// MaxDefaultIterationsDuration is the wall-clock budget for adaptive
	// iteration. Zero means the 10 second default.
	MaxDefaultIterationsDuration time.Duration

	// OutputDir, when set, receives <name>.json.
	OutputDir string

	// MetricsFile, when set, receives a Prometheus textfile.
	MetricsFile string

	// Summary prints a table of the results to stderr on Output.
	Summary bool

	// LogLevel is used by FromEnv to build the default logger.
	LogLevel string

	// LogFile additionally receives JSON logs.
	LogFile string
}

func DefaultConfig() Config {
	return Config{
		MaxDefaultIterationsDuration: config.DefaultMaxDefaultIterationsDuration,
		LogLevel:                     "warn",
	}
}

// ConfigFromEnv reads BENCHY_* variables, a .env file and benchy.yaml.
func ConfigFromEnv() (Config, error) {
	s, err := config.Load("")
	if err != nil {
		return Config{}, err
	}
	return ConfigFromSettings(s), nil
}

// ConfigFromSettings converts resolved settings.
func ConfigFromSettings(s *config.Settings) Config {
	return Config{
		Quick:                        s.Quick,
		MaxDefaultIterationsDuration: s.MaxDefaultIterationsDuration,
		OutputDir:                    s.OutputDir,
		MetricsFile:                  s.MetricsFile,
		Summary:                      s.Summary,
		LogLevel:                     s.LogLevel,
		LogFile:                      s.LogFile,
	}
}

func (c Config) budget() time.Duration {
	if c.MaxDefaultIterationsDuration <= 0 {
		return config.DefaultMaxDefaultIterationsDuration
	}
	return c.MaxDefaultIterationsDuration
}
