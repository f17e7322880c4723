package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"
)

// Repository persists session bundles and last-activity timestamps keyed by
// session id. The two values are stored separately so a touch never
// rewrites the bundle.
//
// Load returns (nil, nil) when nothing is stored or the stored bundle cannot
// be decoded.
type Repository interface {
	Load(ctx context.Context, id string) (*Bundle, error)
	Save(ctx context.Context, id string, b *Bundle) error
	Clear(ctx context.Context, id string) error
	Touch(ctx context.Context, id string, at time.Time) error
	LastActivity(ctx context.Context, id string) (time.Time, bool, error)
	IDs(ctx context.Context) ([]string, error)
}

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ErrInvalidID is returned for session ids that are empty or contain
// characters outside [A-Za-z0-9_-].
var ErrInvalidID = errors.New("session: invalid session id")

func checkID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func encodeBundle(b *Bundle) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("session: nil bundle")
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return data, nil
}

// decodeBundle never fails: malformed data reads as no session.
func decodeBundle(data []byte) *Bundle {
	if len(data) == 0 {
		return nil
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil || b.Token == "" {
		return nil
	}
	return &b
}

type memoryEntry struct {
	bundle   []byte
	activity time.Time
	touched  bool
}

// MemoryRepository keeps sessions in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]*memoryEntry)}
}

func (m *MemoryRepository) entry(id string) *memoryEntry {
	e, ok := m.entries[id]
	if !ok {
		e = &memoryEntry{}
		m.entries[id] = e
	}
	return e
}

func (m *MemoryRepository) Load(_ context.Context, id string) (*Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return decodeBundle(e.bundle), nil
}

func (m *MemoryRepository) Save(_ context.Context, id string, b *Bundle) error {
	if err := checkID(id); err != nil {
		return err
	}
	data, err := encodeBundle(b)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(id).bundle = data
	return nil
}

func (m *MemoryRepository) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryRepository) Touch(_ context.Context, id string, at time.Time) error {
	if err := checkID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	e.activity = at
	e.touched = true
	return nil
}

func (m *MemoryRepository) LastActivity(_ context.Context, id string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok || !e.touched {
		return time.Time{}, false, nil
	}
	return e.activity, true, nil
}

func (m *MemoryRepository) IDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// putRaw stores bytes as-is. Used by tests to simulate corrupted storage.
func (m *MemoryRepository) putRaw(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(id).bundle = data
}

// ValidID reports whether id can key a session.
func ValidID(id string) bool { return checkID(id) == nil }
