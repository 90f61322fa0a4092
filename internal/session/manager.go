// Package session owns the single in-memory User projection. The manager
// resolves a session at startup from the stored identity reference, handles
// login/registration/logout, and serializes every projection mutation behind
// its mutex.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"casino/internal/models"
	"casino/internal/store"
)

type Manager struct {
	backend store.Backend
	refs    RefStore

	mu   sync.Mutex
	user *models.User
}

func NewManager(backend store.Backend, refs RefStore) *Manager {
	return &Manager{backend: backend, refs: refs}
}

// Resolve rebuilds the session from the stored identity reference. It never
// fails fatally: any invalid, stale, or backend-incompatible reference is
// discarded and the result is simply "logged out".
func (m *Manager) Resolve(ctx context.Context) (models.User, bool) {
	ref, ok := m.refs.Load()
	if !ok {
		return models.User{}, false
	}
	// A reference issued by another backend, or one whose identifier does
	// not have the active backend's shape, must not be reused.
	if ref.Backend != m.backend.Name() || !m.backend.AcceptsProfileID(ref.ProfileID) {
		log.Printf("session: discarding reference incompatible with %s backend", m.backend.Name())
		m.discardRef()
		return models.User{}, false
	}
	profile, err := m.backend.GetProfile(ctx, ref.ProfileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.discardRef()
		} else {
			log.Printf("session: resolve failed: %v", err)
		}
		return models.User{}, false
	}
	user := m.buildUser(ctx, profile)
	m.setUser(user)
	return user, true
}

// Login delegates the credential check to the active backend. Authentication
// failure is a boolean false, never an error surfaced to the caller.
func (m *Manager) Login(ctx context.Context, username, password string) (models.User, bool) {
	profile, err := m.backend.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, store.ErrInvalidCredentials) {
			log.Printf("session: login failed: %v", err)
		}
		return models.User{}, false
	}
	user := m.buildUser(ctx, profile)
	m.setUser(user)
	m.saveRef(profile.ID)
	return user, true
}

// Register creates a new Profile and Stats pair and signs the session in.
// store.ErrUsernameTaken is returned when the username exists.
func (m *Manager) Register(ctx context.Context, username, password string) (models.User, error) {
	profile, stats, err := m.backend.CreateProfile(ctx, username, password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{Profile: profile, Stats: stats}
	m.setUser(user)
	m.saveRef(profile.ID)
	return user, nil
}

// Logout clears the stored reference and the projection. Always succeeds.
func (m *Manager) Logout() {
	m.discardRef()
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}

// Current returns a snapshot of the projection, if a session is active.
func (m *Manager) Current() (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// Mutate runs fn on the projection under the lock and returns the resulting
// snapshot. Ledger operations use this for their read-modify-write; the
// snapshot is what gets persisted and broadcast.
func (m *Manager) Mutate(fn func(u *models.User)) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return models.User{}, false
	}
	fn(m.user)
	return *m.user, true
}

func (m *Manager) buildUser(ctx context.Context, profile models.Profile) models.User {
	stats, err := m.backend.GetStats(ctx, profile.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("session: failed to load stats for %s: %v", profile.ID, err)
		}
		stats = models.ZeroStats(profile.ID)
	}
	return models.User{Profile: profile, Stats: stats}
}

func (m *Manager) setUser(user models.User) {
	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
}

func (m *Manager) saveRef(profileID string) {
	if err := m.refs.Save(Ref{ProfileID: profileID, Backend: m.backend.Name()}); err != nil {
		log.Printf("session: failed to persist reference: %v", err)
	}
}

func (m *Manager) discardRef() {
	if err := m.refs.Clear(); err != nil {
		log.Printf("session: failed to clear reference: %v", err)
	}
}
