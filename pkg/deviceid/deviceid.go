// Package deviceid provides the durable per-installation identifier used for
// device binding. Browser clients keep theirs in localStorage; this is the
// same contract for native/kiosk installs: generated once with a random UUID
// and persisted under the user config dir, identical on every later call.
package deviceid

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const idPrefix = "dvc_"

type Store struct {
	mu   sync.Mutex
	path string
	id   string
}

// NewStore creates a store persisting at dir/attendance-device-id. An empty
// dir resolves to the OS user config dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		dir = filepath.Join(base, "grinders-attendance")
	}
	return &Store{path: filepath.Join(dir, "attendance-device-id")}, nil
}

// GetOrCreate returns the installation's device id, generating and persisting
// it on first call. Idempotent: repeated calls (and new Store instances over
// the same path) yield the same id.
func (s *Store) GetOrCreate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return s.id, nil
	}

	raw, err := os.ReadFile(s.path)
	if err == nil {
		id := strings.TrimSpace(string(raw))
		if strings.HasPrefix(id, idPrefix) {
			s.id = id
			return s.id, nil
		}
		// Corrupt file, regenerate below.
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read device id file: %w", err)
	}

	id := idPrefix + uuid.NewString()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create device id dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}

	s.id = id
	return s.id, nil
}
