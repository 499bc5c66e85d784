package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/regional-events/internal/event"
)

// DefaultPath is the dataset location used when none is configured
const DefaultPath = "static/data.json"

// Storage handles persistence of the event dataset
type Storage struct {
	path string
}

// New creates a new Storage instance for the dataset at path
func New(path string) (*Storage, error) {
	if path == "" {
		path = DefaultPath
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	return &Storage{path: path}, nil
}

// Path returns the dataset file location
func (s *Storage) Path() string {
	return s.path
}

// Load reads the dataset and assigns each record its index
func (s *Storage) Load() ([]event.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	records, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Decode parses a dataset snapshot. Malformed dates surface as *event.MalformedDateError.
func Decode(data []byte) ([]event.Record, error) {
	var records []event.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	event.Reindex(records)
	return records, nil
}

// Encode renders records in the on-disk format
func Encode(records []event.Record) ([]byte, error) {
	if records == nil {
		records = []event.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes records back to the dataset file
func (s *Storage) Save(records []event.Record) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".data-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing dataset: %w", err)
	}

	return nil
}
