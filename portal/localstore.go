// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/univen/housing-portal/models"
)

// LocalState is what the portal keeps between runs. The student fields are
// display mirrors; the server stays authoritative.
type LocalState struct {
	BaseURL       string `json:"base_url,omitempty"`
	Session       string `json:"session,omitempty"`
	UserType      string `json:"user_type,omitempty"`
	StudentNumber string `json:"student_number,omitempty"`
	StudentName   string `json:"student_name,omitempty"`
	StudentGender string `json:"student_gender,omitempty"`
}

// Mirror copies the display fields of the signed-in student.
func (s *LocalState) Mirror(me models.MeResponse) {
	s.UserType = me.UserType
	if me.Student == nil {
		s.StudentNumber, s.StudentName, s.StudentGender = "", "", ""
		return
	}
	s.StudentNumber = me.Student.StudentNumber
	s.StudentName = me.Student.FullName()
	s.StudentGender = me.Student.Gender
}

// LocalStore persists LocalState as a JSON file with owner-only
// permissions.
type LocalStore struct {
	mu   sync.Mutex
	path string
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

func (s *LocalStore) Path() string {
	return s.path
}

// Load returns the saved state; a missing file is an empty state.
func (s *LocalStore) Load() (LocalState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st LocalState
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read state: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return LocalState{}, fmt.Errorf("failed to parse state %s: %w", s.path, err)
	}
	return st, nil
}

// Save writes the state atomically.
func (s *LocalStore) Save(st LocalState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*")
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Clear removes the saved state.
func (s *LocalStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
