// Package jsonstore loads and atomically saves the small JSON documents
// keytester keeps on disk, serializing writers with a per-file lock.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrCorruptData is returned when a document exists but is not a JSON object
	ErrCorruptData = errors.New("corrupt data")
	// ErrIOFailure is returned when a document or file cannot be written
	ErrIOFailure = errors.New("io failure")
)

// Indent matches the layout of documents written by earlier releases
const Indent = "    "

// Load decodes the JSON object at path into v.
// Returns found=false and no error if the file does not exist.
func Load(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return true, fmt.Errorf("%s: %w: not a JSON object", path, ErrCorruptData)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return true, fmt.Errorf("%s: %w: %v", path, ErrCorruptData, err)
	}
	return true, nil
}

// Save writes v to path as indented JSON using atomic write (temp file + rename).
// Concurrent writers across processes are serialized by a lock file next to path.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", Indent)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIOFailure, dir, err)
	}

	return WithLock(path, func() error {
		return WriteFileAtomic(path, data)
	})
}

// WriteFileAtomic writes data to a temp file in the destination directory
// and renames it over path, so readers never observe a truncated file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrIOFailure, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrIOFailure, path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %v", ErrIOFailure, path, err)
	}
	return nil
}
