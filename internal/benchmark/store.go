package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// Store defines the interface for storing benchmark runs.
type Store interface {
	Save(run Run) error
	LoadLatest(benchmark string) (*Run, error)
	LoadAll() ([]Run, error)
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string { return s.path }

// Save appends run, assigning an ID when it has none. The file is replaced
// atomically so an interrupted save never truncates the history.
func (s *FileStore) Save(run Run) error {
	runs, err := s.LoadAll()
	if err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	runs = append(runs, run)

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal runs: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) LoadAll() ([]Run, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Run{}, nil
		}
		return nil, err
	}

	var runs []Run
	if len(data) == 0 {
		return []Run{}, nil
	}

	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal runs: %w", err)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

// LoadLatest returns the most recent run of benchmark, or of any benchmark
// when the name is empty. It returns nil when there is none.
func (s *FileStore) LoadLatest(benchmark string) (*Run, error) {
	runs, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	for i := len(runs) - 1; i >= 0; i-- {
		if benchmark == "" || runs[i].Benchmark == benchmark {
			return &runs[i], nil
		}
	}
	return nil, nil
}

// Get finds a run by ID.
func (s *FileStore) Get(id string) (*Run, error) {
	runs, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].ID == id {
			return &runs[i], nil
		}
	}
	return nil, fmt.Errorf("run %s not found in %s", id, s.path)
}
