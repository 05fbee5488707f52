package benchy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RunExcludesSetup(t *testing.T) {
	r := newRun("sleep", false)

	time.Sleep(30 * time.Millisecond)
	r.Run(func() { time.Sleep(5 * time.Millisecond) })

	assert.GreaterOrEqual(t, r.Time, 5*time.Millisecond)
	assert.Less(t, r.Time, 30*time.Millisecond)
}

func TestMeasure_ReturnsResult(t *testing.T) {
	r := newRun("sum", false)

	got := Measure(r, func() int {
		total := 0
		for i := 1; i <= 100; i++ {
			total += i
		}
		return total
	})

	assert.Equal(t, 5050, got)
	assert.Positive(t, r.Time)
	assert.NotContains(t, r.Metrics, MetricMemoryUsage)
}

func TestRun_Log(t *testing.T) {
	r := &Run{Name: "zero value"}
	r.Log("cycles", 10)
	r.Log("cycles", 12)
	r.Log("proof_bytes", 2048)

	assert.Equal(t, map[string]uint64{"cycles": 12, "proof_bytes": 2048}, r.Metrics)
}

func TestRun_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		run  Run
		want string
	}{
		{
			name: "Seconds And Nanos",
			run:  Run{Name: "prove", Time: 2*time.Second + 500*time.Nanosecond, Metrics: map[string]uint64{"b": 2, "a": 1}},
			want: `{"name":"prove","time":{"secs":2,"nanos":500},"metrics":{"a":1,"b":2}}`,
		},
		{
			name: "Nil Metrics",
			run:  Run{Name: "empty"},
			want: `{"name":"empty","time":{"secs":0,"nanos":0},"metrics":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.run)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestRun_UnmarshalJSON(t *testing.T) {
	var r Run
	require.NoError(t, json.Unmarshal([]byte(`{"name":"verify","time":{"secs":1,"nanos":250000000},"metrics":{"memory_usage_bytes":4096}}`), &r))

	assert.Equal(t, "verify", r.Name)
	assert.Equal(t, 1250*time.Millisecond, r.Time)
	assert.Equal(t, uint64(4096), r.Metrics[MetricMemoryUsage])

	t.Run("Null Metrics", func(t *testing.T) {
		var r Run
		require.NoError(t, json.Unmarshal([]byte(`{"name":"x","time":{"secs":0,"nanos":1},"metrics":null}`), &r))
		assert.NotNil(t, r.Metrics)
	})

	t.Run("Group Shape Rejected", func(t *testing.T) {
		var r Run
		err := json.Unmarshal([]byte(`{"name":"g","results":[],"time":{"secs":0,"nanos":0},"metrics":{}}`), &r)
		assert.ErrorIs(t, err, ErrNotRun)
	})

	t.Run("Missing Metrics", func(t *testing.T) {
		var r Run
		err := json.Unmarshal([]byte(`{"name":"x","time":{"secs":0,"nanos":0}}`), &r)
		assert.ErrorIs(t, err, ErrNotRun)
	})
}
