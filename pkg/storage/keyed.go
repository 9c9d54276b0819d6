package storage

import (
	"context"
	"strings"
	"sync"
)

// KeyedStore is the synchronous key-value medium every workspace persists through.
// Get reports ok=false for an absent key; Remove of an absent key is not an error.
type KeyedStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// ChangeNotifier is implemented by media that can announce writes, mirroring
// the browser storage event other tabs listen to.
type ChangeNotifier interface {
	OnChange(fn func(key string))
}

// Global logical keys shared by every teacher.
const (
	KeyAuthorizedTeachers = "authorizedTeachers"
	KeyTransfers          = "system_transfers"
	KeyGroups             = "teacher_groups"
	KeyMessages           = "system_messages"
)

var globalKeys = map[string]struct{}{
	KeyAuthorizedTeachers: {},
	KeyTransfers:          {},
	KeyGroups:             {},
	KeyMessages:           {},
}

// IsGlobal reports whether a logical key bypasses namespacing.
func IsGlobal(logical string) bool {
	_, ok := globalKeys[logical]
	return ok
}

// NormalizeEmail is the canonical form of a teacher identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Namespace derives raw keys for one teacher.
type Namespace struct {
	owner string
}

// NewNamespace builds a namespace; an empty email yields a namespace without a session.
func NewNamespace(email string) Namespace {
	return Namespace{owner: NormalizeEmail(email)}
}

// Owner returns the normalised email the namespace is bound to.
func (n Namespace) Owner() string { return n.owner }

// Active reports whether a teacher session backs this namespace.
func (n Namespace) Active() bool { return n.owner != "" }

// Key resolves a logical key. Global keys are returned verbatim; namespaced keys
// resolve to "<email>_<logical>" and report false when no teacher is in session.
func (n Namespace) Key(logical string) (string, bool) {
	if IsGlobal(logical) {
		return logical, true
	}
	if n.owner == "" {
		return "", false
	}
	return n.owner + "_" + logical, true
}

// MemoryStore is an in-process KeyedStore.
type MemoryStore struct {
	mu        sync.RWMutex
	data      map[string][]byte
	listeners []func(string)
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.mu.Lock()
	s.data[key] = stored
	listeners := s.listeners
	s.mu.Unlock()
	notify(listeners, key)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	listeners := s.listeners
	s.mu.Unlock()
	notify(listeners, key)
	return nil
}

// OnChange registers a listener invoked after every write.
func (s *MemoryStore) OnChange(fn func(key string)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func notify(listeners []func(string), key string) {
	for _, fn := range listeners {
		fn(key)
	}
}
