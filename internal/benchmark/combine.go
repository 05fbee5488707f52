package benchmark

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Combined is the document consumed by the results site: report results
// keyed by framework (file name), category (directory name) and result name.
type Combined struct {
	Meta       json.RawMessage                                  `json:"meta"`
	Frameworks map[string]map[string]map[string]json.RawMessage `json:"frameworks"`
}

// MetaFile replaces the generated meta block when present in the tree.
const MetaFile = "meta.json"

// Combine walks root and merges every <framework>.json report into one
// document.
//
// A report at dir/category/noir.json ends up under
// frameworks["noir"]["category"][<result name>]. Files that are not valid
// JSON or have no results are logged and skipped.
func Combine(root string, now time.Time, log *slog.Logger) (*Combined, error) {
	if log == nil {
		log = slog.Default()
	}

	meta, err := json.Marshal(map[string]string{"lastUpdated": now.UTC().Format(time.RFC3339Nano)})
	if err != nil {
		return nil, err
	}

	out := &Combined{
		Meta:       meta,
		Frameworks: map[string]map[string]map[string]json.RawMessage{},
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if filepath.Base(path) == MetaFile {
			if !json.Valid(data) {
				log.Warn("Could not decode JSON", "path", path)
				continue
			}
			out.Meta = json.RawMessage(data)
			continue
		}

		var report struct {
			Results *[]json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(data, &report); err != nil {
			log.Warn("Could not decode JSON", "path", path, "error", err)
			continue
		}
		if report.Results == nil {
			log.Warn("'results' key not found", "path", path)
			continue
		}

		byName := make(map[string]json.RawMessage, len(*report.Results))
		for _, item := range *report.Results {
			var named struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(item, &named); err != nil {
				log.Warn("Could not decode result", "path", path, "error", err)
				continue
			}
			byName[named.Name] = item
		}

		framework := strings.TrimSuffix(filepath.Base(path), ".json")
		category := filepath.Base(filepath.Dir(path))
		if out.Frameworks[framework] == nil {
			out.Frameworks[framework] = map[string]map[string]json.RawMessage{}
		}
		out.Frameworks[framework][category] = byName
	}

	return out, nil
}
