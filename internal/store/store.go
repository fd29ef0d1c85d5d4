// Package store persists whole-file JSON documents with atomic rewrites.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Versioned is implemented by documents carrying a schema version string.
// The version is logged when it differs from the writer's but never enforced.
type Versioned interface {
	DocVersion() string
}

// Document binds one JSON document type to one file on disk.
// All writes go through Save, which rewrites the whole file atomically.
type Document[T any] struct {
	path string
	log  zerolog.Logger
}

// NewDocument creates a handle for the document at path
func NewDocument[T any](path string, log zerolog.Logger) *Document[T] {
	return &Document[T]{path: path, log: log.With().Str("document", filepath.Base(path)).Logger()}
}

// Path returns the backing file path
func (d *Document[T]) Path() string {
	return d.path
}

// Load reads and unmarshals the document. A missing file or corrupt
// content substitutes the given default with a warning; corruption is
// never fatal.
func (d *Document[T]) Load(def T) T {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.log.Warn().Err(err).Msg("document unreadable, using default")
		}
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		d.log.Warn().Err(err).Msg("document corrupt, using default")
		return def
	}

	if ver, ok := any(v).(Versioned); ok {
		if cur, ok := any(def).(Versioned); ok && ver.DocVersion() != cur.DocVersion() {
			d.log.Debug().
				Str("version", ver.DocVersion()).
				Str("writer_version", cur.DocVersion()).
				Msg("document version differs")
		}
	}
	return v
}

// Save writes the document as pretty-printed JSON. The content goes to a
// temp file in the same directory and is renamed over the target, so a
// crash mid-write leaves the previous version intact.
func (d *Document[T]) Save(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", d.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", d.path, err)
	}

	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", d.path, err)
	}

	d.log.Debug().Msg("document saved")
	return nil
}
