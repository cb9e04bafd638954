package kiosk

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PairingRecord is the device's cached claim on a screen. It is only trusted
// after revalidation against the server.
type PairingRecord struct {
	ScreenID     string    `json:"screenId"`
	DeviceID     string    `json:"deviceId"`
	AuthorizedAt time.Time `json:"authorizedAt"`
}

// Store persists the device identity and pairing records locally.
type Store interface {
	// DeviceID returns the device's id, generating and persisting it on first use.
	DeviceID() (string, error)
	Pairing(screenID string) (*PairingRecord, error)
	SavePairing(record PairingRecord) error
	ClearPairing(screenID string) error
}

type state struct {
	DeviceID string                   `json:"deviceId"`
	Pairings map[string]PairingRecord `json:"pairings"`
}

func newState() *state {
	return &state{Pairings: map[string]PairingRecord{}}
}

func (s *state) deviceID() bool {
	if s.DeviceID != "" {
		return false
	}
	s.DeviceID = uuid.NewString()
	return true
}

// MemoryStore keeps state for the life of the process.
type MemoryStore struct {
	mu    sync.Mutex
	state *state
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newState()}
}

func (m *MemoryStore) DeviceID() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.deviceID()
	return m.state.DeviceID, nil
}

func (m *MemoryStore) Pairing(screenID string) (*PairingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.state.Pairings[screenID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *MemoryStore) SavePairing(record PairingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Pairings[record.ScreenID] = record
	return nil
}

func (m *MemoryStore) ClearPairing(screenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state.Pairings, screenID)
	return nil
}

// FileStore keeps state in a JSON file so the device id survives restarts.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) load() (*state, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return newState(), nil
	}
	if err != nil {
		return nil, err
	}
	s := newState()
	if err := json.Unmarshal(b, s); err != nil {
		return nil, err
	}
	if s.Pairings == nil {
		s.Pairings = map[string]PairingRecord{}
	}
	return s, nil
}

func (f *FileStore) save(s *state) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) update(fn func(s *state) bool) (*state, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.load()
	if err != nil {
		return nil, err
	}
	if fn(s) {
		if err := f.save(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (f *FileStore) DeviceID() (string, error) {
	s, err := f.update(func(s *state) bool { return s.deviceID() })
	if err != nil {
		return "", err
	}
	return s.DeviceID, nil
}

func (f *FileStore) Pairing(screenID string) (*PairingRecord, error) {
	s, err := f.update(func(*state) bool { return false })
	if err != nil {
		return nil, err
	}
	if r, ok := s.Pairings[screenID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *FileStore) SavePairing(record PairingRecord) error {
	_, err := f.update(func(s *state) bool {
		s.Pairings[record.ScreenID] = record
		return true
	})
	return err
}

func (f *FileStore) ClearPairing(screenID string) error {
	_, err := f.update(func(s *state) bool {
		if _, ok := s.Pairings[screenID]; !ok {
			return false
		}
		delete(s.Pairings, screenID)
		return true
	})
	return err
}
