package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrCorrupt is returned by Load when the file exists but does not decode.
var ErrCorrupt = errors.New("json file corrupt")

// JSONFile reads and atomically replaces a single JSON document on disk.
// It does not lock; callers serialize writers.
type JSONFile struct {
	path string
}

// NewJSONFile returns a handle for path, creating the parent directory.
func NewJSONFile(path string) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONFile{path: path}, nil
}

// Path returns the canonical file location.
func (f *JSONFile) Path() string {
	return f.path
}

// Load decodes the file into v. A missing file leaves v untouched and returns
// found=false; undecodable content returns an error wrapping ErrCorrupt.
func (f *JSONFile) Load(v any) (found bool, err error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return true, nil
}

// Save writes v to a temporary file in the same directory, syncs it and renames
// it over the canonical path, so readers never observe a partial document.
func (f *JSONFile) Save(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Quarantine moves an unreadable file aside so the next Save does not destroy it.
func (f *JSONFile) Quarantine() (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", f.path, time.Now().UnixNano())
	if err := os.Rename(f.path, target); err != nil {
		return "", err
	}
	return target, nil
}
