package benchy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_NestingAndOrder(t *testing.T) {
	b := New("tree", WithInProcess())
	outer := b.Group("outer")
	outer.Group("first")
	inner := outer.Group("second")
	inner.Group("deep")

	require.Len(t, b.Results, 1)
	require.Len(t, outer.Results, 2)
	assert.Equal(t, "first", outer.Results[0].(*Group).Name)
	assert.Equal(t, "second", outer.Results[1].(*Group).Name)
	assert.Equal(t, []string{"outer", "second", "deep"}, inner.Results[0].(*Group).path)
}

func TestGroup_MarshalJSON(t *testing.T) {
	g := Group{
		Name: "hashes",
		Results: []Result{
			&Run{Name: "sha256", Time: time.Millisecond, Metrics: map[string]uint64{"bytes": 32}},
			&Group{Name: "empty"},
		},
	}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "hashes",
		"results": [
			{"name": "sha256", "time": {"secs": 0, "nanos": 1000000}, "metrics": {"bytes": 32}},
			{"name": "empty", "results": []}
		]
	}`, string(data))
}

func TestDecodeResult_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    any
		wantErr error
	}{
		{
			name:  "Group",
			input: `{"name":"g","results":[]}`,
			want:  &Group{},
		},
		{
			name:  "Run",
			input: `{"name":"r","time":{"secs":0,"nanos":5},"metrics":{}}`,
			want:  &Run{},
		},
		{
			name:  "Results Wins Over Run Fields",
			input: `{"name":"g","results":[],"time":{"secs":0,"nanos":5},"metrics":{}}`,
			want:  &Group{},
		},
		{
			name:    "Time Without Metrics",
			input:   `{"name":"r","time":{"secs":0,"nanos":5}}`,
			wantErr: ErrUnknownShape,
		},
		{
			name:    "Name Only",
			input:   `{"name":"x"}`,
			wantErr: ErrUnknownShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResult([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}

	t.Run("Not An Object", func(t *testing.T) {
		_, err := DecodeResult([]byte(`[1,2]`))
		assert.Error(t, err)
	})
}

func TestGroup_UnmarshalJSON_RejectsRun(t *testing.T) {
	var g Group
	err := json.Unmarshal([]byte(`{"name":"r","time":{"secs":0,"nanos":0},"metrics":{}}`), &g)
	assert.ErrorIs(t, err, ErrNotGroup)
}

func TestGroup_UnmarshalJSON_NestedError(t *testing.T) {
	var g Group
	err := json.Unmarshal([]byte(`{"name":"outer","results":[{"name":"bad"}]}`), &g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownShape)
	assert.Contains(t, err.Error(), `group "outer": result 0`)
}

func TestBenchmark_RoundTrip(t *testing.T) {
	input := `{
		"name": "zk",
		"results": [
			{"name": "prove", "results": [
				{"name": "fib", "results": [
					{"name": "n=10", "time": {"secs": 1, "nanos": 2}, "metrics": {"cycles": 100}}
				]},
				{"name": "single", "time": {"secs": 0, "nanos": 999}, "metrics": {}}
			]}
		]
	}`

	var b Benchmark
	require.NoError(t, json.Unmarshal([]byte(input), &b))

	var paths [][]string
	b.Walk(func(path []string, run *Run) {
		paths = append(paths, path)
	})
	assert.Equal(t, [][]string{{"prove", "fib", "n=10"}, {"prove", "single"}}, paths)

	out, err := b.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}
