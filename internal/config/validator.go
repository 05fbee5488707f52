package config

import (
	"fmt"
	"strings"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the resolved values and reports every problem at once.
func (s *Settings) Validate() error {
	if problems := s.problems(); len(problems) > 0 {
		return validationError(problems)
	}
	return nil
}

func (s *Settings) problems() []string {
	var errors []string

	if s.MaxDefaultIterationsDuration <= 0 {
		errors = append(errors, fmt.Sprintf("%s must be positive, got: %v", KeyMaxDefaultIterationsDuration, s.MaxDefaultIterationsDuration))
	}

	if s.LogLevel != "" && !validLevel(s.LogLevel) {
		errors = append(errors, fmt.Sprintf("%s must be one of %s, got: %q", KeyLogLevel, strings.Join(logLevels, ", "), s.LogLevel))
	}

	if s.OutputDir != "" && s.OutputDir == s.MetricsFile {
		errors = append(errors, fmt.Sprintf("%s and %s must differ, both are %q", KeyOutputDir, KeyMetricsFile, s.OutputDir))
	}

	return errors
}

func validLevel(level string) bool {
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

func validationError(errors []string) error {
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
}
