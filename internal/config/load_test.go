package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanEnv isolates a test from the caller's BENCHY_* variables and from any
// benchy.yaml or .env in the package directory.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		KeyQuick, KeyMaxDefaultIterationsDuration, KeyOutputDir,
		KeyMetricsFile, KeySummary, KeyLogLevel, KeyLogFile,
	} {
		name := envName(key)
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	chdirTest(t, t.TempDir())
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cleanEnv(t)

		s, err := Load("")
		require.NoError(t, err)
		assert.False(t, s.Quick)
		assert.Equal(t, 10*time.Second, s.MaxDefaultIterationsDuration)
		assert.Empty(t, s.OutputDir)
		assert.Empty(t, s.MetricsFile)
		assert.False(t, s.Summary)
		assert.Equal(t, "warn", s.LogLevel)
	})

	t.Run("Load From Env", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("BENCHY_QUICK", "1")
		t.Setenv("BENCHY_MAX_DEFAULT_ITERATIONS_DURATION", "250")
		t.Setenv("BENCHY_OUTPUT_DIR", "out")
		t.Setenv("BENCHY_METRICS_FILE", "bench.prom")
		t.Setenv("BENCHY_SUMMARY", "true")
		t.Setenv("BENCHY_LOG_LEVEL", "DEBUG")

		s, err := Load("")
		require.NoError(t, err)
		assert.True(t, s.Quick)
		assert.Equal(t, 250*time.Millisecond, s.MaxDefaultIterationsDuration)
		assert.Equal(t, "out", s.OutputDir)
		assert.Equal(t, "bench.prom", s.MetricsFile)
		assert.True(t, s.Summary)
		assert.Equal(t, "debug", s.LogLevel)
	})

	t.Run("Load From Config File", func(t *testing.T) {
		cleanEnv(t)
		require.NoError(t, os.WriteFile("benchy.yaml", []byte("quick: true\nmax_default_iterations_duration: 1500\noutput_dir: results\n"), 0o644))

		s, err := Load("")
		require.NoError(t, err)
		assert.True(t, s.Quick)
		assert.Equal(t, 1500*time.Millisecond, s.MaxDefaultIterationsDuration)
		assert.Equal(t, "results", s.OutputDir)
	})

	t.Run("Env Overrides Config File", func(t *testing.T) {
		cleanEnv(t)
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output_dir: from-file\n"), 0o644))
		t.Setenv("BENCHY_OUTPUT_DIR", "from-env")

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", s.OutputDir)
	})

	t.Run("Explicit Config File Missing", func(t *testing.T) {
		cleanEnv(t)

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("Dot Env File", func(t *testing.T) {
		cleanEnv(t)
		require.NoError(t, os.WriteFile(".env", []byte("BENCHY_METRICS_FILE=dotenv.prom\n"), 0o644))

		s, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "dotenv.prom", s.MetricsFile)
	})

	t.Run("Invalid Values Are Collected", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("BENCHY_QUICK", "maybe")
		t.Setenv("BENCHY_MAX_DEFAULT_ITERATIONS_DURATION", "soon")
		t.Setenv("BENCHY_LOG_LEVEL", "loud")

		_, err := Load("")
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, "configuration validation failed")
		assert.Contains(t, msg, `quick: invalid boolean "maybe"`)
		assert.Contains(t, msg, `invalid duration "soon"`)
		assert.Contains(t, msg, "log_level must be one of")
		assert.NotContains(t, msg, "must be positive")
	})
}

func TestParseMillis(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"Plain Milliseconds", "100", 100 * time.Millisecond, false},
		{"Surrounding Space", " 42 ", 42 * time.Millisecond, false},
		{"Go Duration", "2s", 2 * time.Second, false},
		{"Zero", "0", 0, false},
		{"Garbage", "ten", 0, true},
		{"Empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMillis(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
