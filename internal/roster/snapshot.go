// ABOUTME: JSON snapshot persistence for the full roster
// ABOUTME: Shape is a plain array of contact records, compatible with prior snapshots

package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot persists the whole roster. The file snapshot below is the normal
// implementation; tests substitute their own.
type Snapshot interface {
	Load() ([]Contact, error)
	Save(contacts []Contact) error
}

// FileSnapshot stores the roster as a JSON array at a fixed path.
type FileSnapshot struct {
	path string
}

// NewFileSnapshot returns a snapshot rooted at path. Parent directories are
// created on the first save.
func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

// Load reads the snapshot. A missing file is an empty roster, not an error.
func (s *FileSnapshot) Load() ([]Contact, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading roster snapshot: %w", err)
	}
	var contacts []Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("parsing roster snapshot: %w", err)
	}
	return contacts, nil
}

// Save overwrites the snapshot wholesale with the given roster.
func (s *FileSnapshot) Save(contacts []Contact) error {
	if contacts == nil {
		contacts = []Contact{}
	}
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding roster snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing roster snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing roster snapshot: %w", err)
	}
	return nil
}
