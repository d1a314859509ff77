// Package file stores session snapshots as JSON files under a root directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/persistence"
)

// Store implements persistence.SessionStore on the local file system.
type Store struct {
	root string
}

// NewStore accepts a plain path or a file:// URL.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

func (s *Store) path(client models.ClientKind) string {
	return filepath.Join(s.root, "session-"+string(client)+".json")
}

func (s *Store) Load(_ context.Context, client models.ClientKind) (*persistence.Snapshot, error) {
	data, err := os.ReadFile(s.path(client))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewSessionError("Load", client, persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("Load", client, err)
	}

	var snapshot persistence.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, persistence.NewSessionError("Load", client, fmt.Errorf("%w: %w", persistence.ErrCorruptSession, err))
	}

	return &snapshot, nil
}

// Save writes to a temp file and renames it over the snapshot.
func (s *Store) Save(_ context.Context, snapshot *persistence.Snapshot) error {
	if err := os.MkdirAll(s.root, 0o700); err != nil {
		return persistence.NewSessionError("Save", snapshot.Client, err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return persistence.NewSessionError("Save", snapshot.Client, err)
	}

	target := s.path(snapshot.Client)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return persistence.NewSessionError("Save", snapshot.Client, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return persistence.NewSessionError("Save", snapshot.Client, err)
	}

	return nil
}

func (s *Store) Clear(_ context.Context, client models.ClientKind) error {
	err := os.Remove(s.path(client))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return persistence.NewSessionError("Clear", client, err)
	}

	return nil
}

// HealthCheck verifies the root directory exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
