package benchy

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Result is a node of the benchmark tree: a *Group or a *Run.
type Result interface {
	result()
}

// Grouper creates named child groups. *Benchmark and *Group implement it.
type Grouper interface {
	Group(name string) *Group
}

// Group is a named container of runs and nested groups.
type Group struct {
	Name    string
	Results []Result

	path []string
	env  *engine
}

// Group appends a nested group and returns it.
func (g *Group) Group(name string) *Group {
	child := &Group{Name: name, path: g.childPath(name), env: g.env}
	g.Results = append(g.Results, child)
	return child
}

// Config returns the configuration the group was created with.
func (g *Group) Config() Config {
	if g.env == nil {
		return Config{}
	}
	return g.env.config
}

func (g *Group) childPath(name string) []string {
	path := make([]string, 0, len(g.path)+1)
	path = append(path, g.path...)
	return append(path, name)
}

// Walk calls fn for every run below g in order. path holds the names of the
// groups between g and the run, followed by the run's name.
func (g *Group) Walk(fn func(path []string, run *Run)) {
	walk(nil, g.Results, fn)
}

func walk(prefix []string, results []Result, fn func([]string, *Run)) {
	for _, res := range results {
		switch node := res.(type) {
		case *Group:
			walk(appendPath(prefix, node.Name), node.Results, fn)
		case *Run:
			fn(appendPath(prefix, node.Name), node)
		}
	}
}

func appendPath(prefix []string, name string) []string {
	path := make([]string, len(prefix), len(prefix)+1)
	copy(path, prefix)
	return append(path, name)
}

func (*Group) result() {}

type groupJSON struct {
	Name    string   `json:"name"`
	Results []Result `json:"results"`
}

func (g Group) MarshalJSON() ([]byte, error) {
	results := g.Results
	if results == nil {
		results = []Result{}
	}
	return json.Marshal(groupJSON{Name: g.Name, Results: results})
}

// ErrNotGroup reports a JSON object that lacks the shape of a group.
var ErrNotGroup = errors.New("not a group: want an object with results")

// ErrUnknownShape reports a result that is neither a group nor a run.
var ErrUnknownShape = errors.New("result is neither a group nor a run")

func (g *Group) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode group: %w", err)
	}
	if shapeOf(fields) != shapeGroup {
		return ErrNotGroup
	}

	var raw struct {
		Name    string            `json:"name"`
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode group: %w", err)
	}

	results, err := decodeResults(raw.Results)
	if err != nil {
		return fmt.Errorf("group %q: %w", raw.Name, err)
	}
	*g = Group{Name: raw.Name, Results: results}
	return nil
}

// DecodeResult picks the concrete node type from the shape of data.
func DecodeResult(data []byte) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	switch shapeOf(fields) {
	case shapeGroup:
		g := &Group{}
		if err := g.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return g, nil
	case shapeRun:
		r := &Run{}
		if err := r.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, ErrUnknownShape
	}
}

func decodeResults(raws []json.RawMessage) ([]Result, error) {
	results := make([]Result, 0, len(raws))
	for i, raw := range raws {
		res, err := DecodeResult(raw)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

type shape int

const (
	shapeUnknown shape = iota
	shapeGroup
	shapeRun
)

// shapeOf distinguishes the untagged variants: results marks a group, time
// together with metrics marks a run.
func shapeOf(fields map[string]json.RawMessage) shape {
	if _, ok := fields["results"]; ok {
		return shapeGroup
	}
	_, hasTime := fields["time"]
	_, hasMetrics := fields["metrics"]
	if hasTime && hasMetrics {
		return shapeRun
	}
	return shapeUnknown
}
