package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"downtime-panel-bot/internal/models"
)

// DefaultDataFile is the state file used when none is configured.
const DefaultDataFile = "bot_data.json"

// FileStore keeps the state document in a local JSON file.
type FileStore struct {
	path  string
	codec Codec
}

func NewFileStore(path string, codec Codec) *FileStore {
	if path == "" {
		path = DefaultDataFile
	}
	return &FileStore{path: path, codec: codec}
}

// Load reads the file. A missing file is an empty state.
func (s *FileStore) Load(_ context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, s.path, err)
	}
	return s.codec.Decode(data)
}

// Save writes to a temporary file and renames it over the old one so a
// crash never leaves a truncated document.
func (s *FileStore) Save(_ context.Context, snap *models.Snapshot) error {
	data, err := s.codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrPersistence, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrPersistence, s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
