package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// IndexFile is the registry file name inside the data directory.
const IndexFile = "users.json"

// UserEntry lists the output files saved for one user.
type UserEntry struct {
	Username   string   `json:"username"`
	SavedFiles []string `json:"saved_files"`
}

// Index is the per-user registry of saved output files.
type Index struct {
	Users []UserEntry `json:"users"`
}

// LoadIndex reads a registry file. A missing file yields an empty
// registry.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Index{Users: []UserEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	if idx.Users == nil {
		idx.Users = []UserEntry{}
	}
	return &idx, nil
}

// Add registers a saved file under username, creating the user entry on
// first sight. Registering a path a user already has is a no-op, so
// re-running a fetch does not grow the registry.
func (idx *Index) Add(username, file string) {
	for i := range idx.Users {
		if idx.Users[i].Username != username {
			continue
		}
		for _, existing := range idx.Users[i].SavedFiles {
			if existing == file {
				return
			}
		}
		idx.Users[i].SavedFiles = append(idx.Users[i].SavedFiles, file)
		return
	}

	idx.Users = append(idx.Users, UserEntry{
		Username:   username,
		SavedFiles: []string{file},
	})
}

// Save writes the registry with stable two-space indentation.
func (idx *Index) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create index dir %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}
	return nil
}

// RecordSave is the read-modify-write cycle the fetch run uses: load the
// registry, register the file under username, write it back.
func RecordSave(path, username, file string) error {
	idx, err := LoadIndex(path)
	if err != nil {
		return err
	}
	idx.Add(username, file)
	return idx.Save(path)
}
