package session

import (
	"errors"
	"os"
	"strings"

	"casino/internal/auth"
)

// Ref is the locally stored session-identity reference: which profile was
// signed in, and which backend issued the identifier.
type Ref struct {
	ProfileID string
	Backend   string
}

// RefStore persists the reference between process runs.
type RefStore interface {
	Save(ref Ref) error
	Load() (Ref, bool)
	Clear() error
}

// FileRefStore keeps the reference as a signed token in a single file, the
// server-side analogue of the browser's stored session entry.
type FileRefStore struct {
	path   string
	secret string
}

func NewFileRefStore(path, secret string) *FileRefStore {
	return &FileRefStore{path: path, secret: secret}
}

func (s *FileRefStore) Save(ref Ref) error {
	token, err := auth.GenerateReference(s.secret, ref.ProfileID, ref.Backend)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Load returns the stored reference, or ok=false when the file is absent,
// unreadable, or fails signature verification.
func (s *FileRefStore) Load() (Ref, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Ref{}, false
	}
	claims, err := auth.ParseToken(s.secret, strings.TrimSpace(string(raw)))
	if err != nil {
		return Ref{}, false
	}
	if claims.UserID == "" || claims.Backend == "" {
		return Ref{}, false
	}
	return Ref{ProfileID: claims.UserID, Backend: claims.Backend}, true
}

func (s *FileRefStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
