package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when reading the environment.
const EnvPrefix = "BENCHY"

// Keys, also used in the optional benchy.yaml.
const (
	KeyQuick                        = "quick"
	KeyMaxDefaultIterationsDuration = "max_default_iterations_duration"
	KeyOutputDir                    = "output_dir"
	KeyMetricsFile                  = "metrics_file"
	KeySummary                      = "summary"
	KeyLogLevel                     = "log_level"
	KeyLogFile                      = "log_file"
)

// DefaultMaxDefaultIterationsDuration is the adaptive iteration budget.
const DefaultMaxDefaultIterationsDuration = 10 * time.Second

// Settings is the resolved benchmark configuration.
type Settings struct {
	Quick                        bool
	MaxDefaultIterationsDuration time.Duration
	OutputDir                    string
	MetricsFile                  string
	Summary                      bool
	LogLevel                     string
	LogFile                      string
}

// Load resolves settings from a .env file, BENCHY_* environment variables
// and an optional YAML file. With an empty cfgFile, benchy.yaml in the
// working directory is used when present.
func Load(cfgFile string) (*Settings, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("benchy")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyQuick, "false")
	v.SetDefault(KeyMaxDefaultIterationsDuration, strconv.FormatInt(DefaultMaxDefaultIterationsDuration.Milliseconds(), 10))
	v.SetDefault(KeyOutputDir, "")
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeySummary, "false")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Settings, error) {
	var problems []string

	s := &Settings{
		OutputDir:   v.GetString(KeyOutputDir),
		MetricsFile: v.GetString(KeyMetricsFile),
		LogLevel:    strings.ToLower(v.GetString(KeyLogLevel)),
		LogFile:     v.GetString(KeyLogFile),
	}

	var err error
	if s.Quick, err = parseBool(v.GetString(KeyQuick)); err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", KeyQuick, err))
	}
	if s.Summary, err = parseBool(v.GetString(KeySummary)); err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", KeySummary, err))
	}
	if s.MaxDefaultIterationsDuration, err = ParseMillis(v.GetString(KeyMaxDefaultIterationsDuration)); err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", KeyMaxDefaultIterationsDuration, err))
		s.MaxDefaultIterationsDuration = DefaultMaxDefaultIterationsDuration
	}

	if len(problems) == 0 {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return s, nil
	}

	return nil, validationError(append(problems, s.problems()...))
}

// ParseMillis parses a whole number of milliseconds. Go duration strings such
// as "250ms" or "2s" are accepted too.
func ParseMillis(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q, expected milliseconds", raw)
	}
	return d, nil
}

// parseBool accepts "1"/"true" and everything strconv.ParseBool does;
// an empty value is false.
func parseBool(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
	return b, nil
}
