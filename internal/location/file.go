package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

// FileBackend stores the mapping as one JSON document.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Load(_ context.Context) (map[string]domain.UserLocation, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.UserLocation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	locations := make(map[string]domain.UserLocation)
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return locations, nil
}

// Save writes a sibling temp file, syncs it and renames it over the target,
// so a crash leaves either the old or the new document on disk.
func (b *FileBackend) Save(_ context.Context, locations map[string]domain.UserLocation) error {
	data, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("encode locations: %w", err)
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}

// Ping checks that the target directory exists.
func (b *FileBackend) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(b.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(b.path))
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
