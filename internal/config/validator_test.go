package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := func() Settings {
		return Settings{MaxDefaultIterationsDuration: time.Second, LogLevel: "warn"}
	}

	tests := []struct {
		name      string
		mutate    func(*Settings)
		wantError bool
		errMsg    string
	}{
		{
			name:      "Valid Configuration",
			mutate:    func(*Settings) {},
			wantError: false,
		},
		{
			name:      "Zero Iteration Budget",
			mutate:    func(s *Settings) { s.MaxDefaultIterationsDuration = 0 },
			wantError: true,
			errMsg:    "max_default_iterations_duration must be positive",
		},
		{
			name:      "Negative Iteration Budget",
			mutate:    func(s *Settings) { s.MaxDefaultIterationsDuration = -time.Second },
			wantError: true,
			errMsg:    "max_default_iterations_duration must be positive",
		},
		{
			name:      "Unknown Log Level",
			mutate:    func(s *Settings) { s.LogLevel = "trace" },
			wantError: true,
			errMsg:    "log_level must be one of debug, info, warn, error",
		},
		{
			name:      "Empty Log Level",
			mutate:    func(s *Settings) { s.LogLevel = "" },
			wantError: false,
		},
		{
			name: "Output Dir Equals Metrics File",
			mutate: func(s *Settings) {
				s.OutputDir = "out"
				s.MetricsFile = "out"
			},
			wantError: true,
			errMsg:    "output_dir and metrics_file must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantError {
				if err == nil {
					t.Errorf("Validate() expected error but got none")
					return
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	s := Settings{MaxDefaultIterationsDuration: 0, LogLevel: "verbose"}

	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() expected error but got none")
	}

	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration validation failed:\n  ") {
		t.Errorf("unexpected error prefix: %q", msg)
	}
	if strings.Count(msg, "\n  ") != 2 {
		t.Errorf("expected two listed problems, got: %q", msg)
	}
}
