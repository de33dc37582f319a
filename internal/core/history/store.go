// Package history owns the on-disk build history: a single JSON document
// holding at most MaxBuilds records, most recent first.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neilberkman/buildtracker/internal/core/models"
)

// MaxBuilds is the retention cap. Older records are dropped on every write.
const MaxBuilds = 100

// Document is the persisted history.
type Document struct {
	Builds []models.Build `json:"builds"`
}

// Store reads and writes the history document at a fixed path
type Store struct {
	path string
}

// New creates a store backed by the file at path
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// EnsureExists creates the history file with an empty document if it is
// missing. Existing files are never touched.
func (s *Store) EnsureExists() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "stat", Path: s.path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &StorageError{Op: "mkdir", Path: filepath.Dir(s.path), Err: err}
	}
	return s.Save(&Document{Builds: []models.Build{}})
}

// Load ensures the file exists, then reads and parses it
func (s *Store) Load() (*Document, error) {
	if err := s.EnsureExists(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	// Decode the top level loosely first so a missing or mistyped builds
	// key is reported as corruption rather than an empty history.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CorruptDataError{Path: s.path, Err: err}
	}
	buildsRaw, ok := raw["builds"]
	if !ok {
		return nil, &CorruptDataError{Path: s.path, Err: errors.New(`missing "builds" array`)}
	}

	doc := &Document{}
	trimmed := bytes.TrimSpace(buildsRaw)
	if !bytes.Equal(trimmed, []byte("null")) {
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, &CorruptDataError{Path: s.path, Err: errors.New(`"builds" is not an array`)}
		}
		if err := json.Unmarshal(trimmed, &doc.Builds); err != nil {
			return nil, &CorruptDataError{Path: s.path, Err: err}
		}
	}
	if doc.Builds == nil {
		doc.Builds = []models.Build{}
	}
	return doc, nil
}

// Save writes the whole document, pretty-printed. The content goes to a
// temp file in the same directory which is then renamed over the target.
func (s *Store) Save(doc *Document) error {
	if doc.Builds == nil {
		doc.Builds = []models.Build{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return &StorageError{Op: "chmod", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &StorageError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}

// Append prepends b to the history, truncates to MaxBuilds and saves. The
// load-modify-save cycle runs under an exclusive lock on a sibling
// .lock file so cooperating writers do not lose updates. If b.ID is
// already taken it gets a numeric suffix; the stored record is returned.
func (s *Store) Append(b models.Build) (models.Build, error) {
	unlock, err := s.lock()
	if err != nil {
		return models.Build{}, err
	}
	defer unlock()

	doc, err := s.Load()
	if err != nil {
		return models.Build{}, err
	}

	b.ID = uniqueID(b.ID, doc.Builds)

	builds := make([]models.Build, 0, len(doc.Builds)+1)
	builds = append(builds, b)
	builds = append(builds, doc.Builds...)
	if len(builds) > MaxBuilds {
		builds = builds[:MaxBuilds]
	}
	doc.Builds = builds

	if err := s.Save(doc); err != nil {
		return models.Build{}, err
	}
	return b, nil
}

// uniqueID returns id, or id-N for the smallest N >= 1 not already used
func uniqueID(id string, existing []models.Build) string {
	taken := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		taken[b.ID] = struct{}{}
	}
	if _, ok := taken[id]; !ok {
		return id
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// Clear replaces the history with an empty document
func (s *Store) Clear() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &StorageError{Op: "mkdir", Path: filepath.Dir(s.path), Err: err}
	}
	return s.Save(&Document{Builds: []models.Build{}})
}

func (s *Store) lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: filepath.Dir(s.path), Err: err}
	}
	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return nil, &StorageError{Op: "lock", Path: s.path, Err: err}
	}
	return unlock, nil
}
