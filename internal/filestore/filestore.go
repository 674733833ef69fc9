// Package filestore is the durable home of candidate artifacts.
//
// Files live under a three-level scope — {session}/{exam}/{centre} — with
// one subfolder per role: success, errors, imported, plus a legacy flat
// misc folder at the root. A candidate's PDF is written once into success
// and then only ever *moved* between role folders, so the folder a file
// sits in is the single source of truth for its disposition.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Role folder names.
const (
	RoleSuccess  = "success"
	RoleErrors   = "errors"
	RoleImported = "imported"
	RoleMisc     = "misc"
)

// Default retry discipline: 15 attempts at 150ms absorbs the transient
// locks we see in practice (AV scanners hold files ~1s); the settle delay
// after writes keeps callers from re-opening a file the OS hasn't fully
// released yet.
const (
	defaultAttempts = 15
	defaultDelay    = 150 * time.Millisecond
	defaultSettle   = 100 * time.Millisecond
)

// Scope identifies the (session, exam, centre) folder subtree one batch
// writes into.
type Scope struct {
	Session int
	Exam    string
	Centre  string
}

// Store performs retrying filesystem operations under a fixed root.
type Store struct {
	root     string
	attempts int
	delay    time.Duration
	settle   time.Duration
}

// New creates a store with the production retry timing.
func New(root string) *Store {
	return NewWithTiming(root, defaultAttempts, defaultDelay, defaultSettle)
}

// NewWithTiming creates a store with explicit retry timing. Tests use this
// to keep retry-exhaustion cases fast.
func NewWithTiming(root string, attempts int, delay, settle time.Duration) *Store {
	return &Store{root: root, attempts: attempts, delay: delay, settle: settle}
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// RoleDir returns the directory for a role within a scope (without
// creating it).
func (s *Store) RoleDir(scope Scope, role string) string {
	return filepath.Join(s.root, strconv.Itoa(scope.Session), scope.Exam, scope.Centre, role)
}

// SaveSuccess writes a candidate artifact into the success folder and
// returns its full path.
func (s *Store) SaveSuccess(scope Scope, name string, data []byte) (string, error) {
	return s.saveRole(scope, RoleSuccess, name, data)
}

// SaveError writes a candidate artifact directly into the errors folder
// and returns its full path.
func (s *Store) SaveError(scope Scope, name string, data []byte) (string, error) {
	return s.saveRole(scope, RoleErrors, name, data)
}

// SaveMisc writes into the legacy flat misc folder at the storage root.
func (s *Store) SaveMisc(name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, RoleMisc)
	return s.writeFile(dir, name, data)
}

func (s *Store) saveRole(scope Scope, role, name string, data []byte) (string, error) {
	return s.writeFile(s.RoleDir(scope, role), name, data)
}

func (s *Store) writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	err := WithRetry(s.attempts, s.delay, func() error {
		return os.WriteFile(path, data, 0o644)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	time.Sleep(s.settle)
	return path, nil
}

// MoveToErrorFolder relocates a file from its success folder to the
// sibling errors folder and returns the new path.
func (s *Store) MoveToErrorFolder(path string) (string, error) {
	return s.moveRole(path, RoleSuccess, RoleErrors)
}

// MoveToSuccessFolder relocates a file from its errors folder back to the
// sibling success folder and returns the new path.
func (s *Store) MoveToSuccessFolder(path string) (string, error) {
	return s.moveRole(path, RoleErrors, RoleSuccess)
}

// moveRole computes the destination by substituting the role segment of
// the path, clears anything already occupying the destination, and renames
// with retry.
func (s *Store) moveRole(path, fromRole, toRole string) (string, error) {
	sep := string(os.PathSeparator)
	fromSeg := sep + fromRole + sep
	toSeg := sep + toRole + sep
	if !strings.Contains(path, fromSeg) {
		return "", fmt.Errorf("path %s is not under a %s folder", path, fromRole)
	}
	newPath := strings.Replace(path, fromSeg, toSeg, 1)

	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(newPath), err)
	}

	// Clear the destination first: repeated imports of same-named files
	// must never silently merge with or corrupt prior content.
	if _, err := os.Stat(newPath); err == nil {
		if err := s.Delete(newPath); err != nil {
			return "", fmt.Errorf("failed to clear destination %s: %w", newPath, err)
		}
	}

	err := WithRetry(s.attempts, s.delay, func() error {
		return os.Rename(path, newPath)
	})
	if err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", path, newPath, err)
	}
	return newPath, nil
}

// InRole reports whether path currently sits under the given role folder.
func (s *Store) InRole(path, role string) bool {
	sep := string(os.PathSeparator)
	return strings.Contains(path, sep+role+sep)
}

// GetImportedFolder ensures and returns the imported folder for a scope.
func (s *Store) GetImportedFolder(scope Scope) (string, error) {
	dir := s.RoleDir(scope, RoleImported)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// NextImportedName returns a collision-free archive name for an original
// source file: {basename}_Tr{ext}, then _Tr1, _Tr2, … until no existing
// file occupies the candidate name.
func (s *Store) NextImportedName(scope Scope, originalName string) (string, error) {
	dir, err := s.GetImportedFolder(scope)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)

	for n := 0; ; n++ {
		suffix := "_Tr"
		if n > 0 {
			suffix = "_Tr" + strconv.Itoa(n)
		}
		name := base + suffix + ext
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			return name, nil
		}
	}
}

// MoveOriginalImportedPdf writes the original batch source into the
// imported folder under the given name and returns the archive path.
func (s *Store) MoveOriginalImportedPdf(scope Scope, name string, data []byte) (string, error) {
	dir, err := s.GetImportedFolder(scope)
	if err != nil {
		return "", err
	}
	return s.writeFile(dir, name, data)
}

// Delete removes a file with retry.
func (s *Store) Delete(path string) error {
	err := WithRetry(s.attempts, s.delay, func() error {
		return os.Remove(path)
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}
