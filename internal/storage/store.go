package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/stats"
	"github.com/san-kum/ising/internal/sweep"
)

const (
	runPrefix     = "results-parallel-"
	tableExt      = ".txt"
	metadataExt   = ".json"
	runTimeLayout = time.RFC3339
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string              `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
	Seed        int64               `json:"seed"`
	Config      config.Config       `json:"config"`
	Elapsed     time.Duration       `json:"elapsed_ns"`
	Table       string              `json:"table"`
	Signals     int64               `json:"signals"`
	Records     []stats.Record      `json:"records"`
	Diagnostics []sweep.Diagnostics `json:"diagnostics"`
}

// RunID names a run after its start time with second precision.
func RunID(at time.Time) string {
	return runPrefix + at.UTC().Format(runTimeLayout)
}

// Save writes the results table and its metadata. An existing run with the
// same ID is overwritten.
func (s *Store) Save(cfg config.Config, result *sweep.Result, at time.Time) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	runID := RunID(at)
	tablePath := filepath.Join(s.baseDir, runID+tableExt)
	if err := os.WriteFile(tablePath, []byte(FormatTable(result.Records)), 0644); err != nil {
		return "", fmt.Errorf("write table: %w", err)
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   at.UTC().Truncate(time.Second),
		Seed:        cfg.Seed,
		Config:      cfg,
		Elapsed:     result.Elapsed,
		Table:       filepath.Base(tablePath),
		Signals:     result.Signals,
		Records:     result.Records,
		Diagnostics: result.Diagnostics,
	}

	metaFile, err := os.Create(filepath.Join(s.baseDir, runID+metadataExt))
	if err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	defer metaFile.Close()

	if err := ExportJSON(metaFile, &meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	return runID, metaFile.Close()
}

// List returns the stored runs, oldest first. Files that are not run
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, runPrefix) || filepath.Ext(name) != metadataExt {
			continue
		}

		meta, err := s.Load(strings.TrimSuffix(name, metadataExt))
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID+metadataExt))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTable reads the records of a run from its table file. runID may also
// be a path to a table file.
func (s *Store) LoadTable(runID string) ([]stats.Record, error) {
	path := runID
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(s.baseDir, runID+tableExt)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Latest returns the most recent run, or nil if none are stored.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[len(runs)-1], nil
}
