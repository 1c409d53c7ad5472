package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session: not found")

// DefaultTTL is the session lifetime used when a store is created
// without one.
const DefaultTTL = time.Hour

// Store persists sessions between requests.
type Store interface {
	Has(id string) bool
	Load(id string) (*Session, error)
	Save(sess *Session) error
	Delete(id string) error
	Close() error
}

type entry struct {
	attributes map[string]any
	deadline   time.Time
}

// MemoryStore keeps sessions in process memory. Every save restarts the
// session's lifetime; entries past their deadline behave as absent until
// PruneExpired reclaims them.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]entry
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (store *MemoryStore) Has(id string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	ent, found := store.entries[id]
	return found && time.Now().Before(ent.deadline)
}

// Load returns a copy of the stored session; mutations are not visible
// until saved back.
func (store *MemoryStore) Load(id string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	ent, found := store.entries[id]
	if !found || !time.Now().Before(ent.deadline) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	attributes := make(map[string]any, len(ent.attributes))
	for name, value := range ent.attributes {
		attributes[name] = value
	}
	return &Session{ID: id, attributes: attributes}, nil
}

func (store *MemoryStore) Save(sess *Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	attributes := make(map[string]any, len(sess.attributes))
	for name, value := range sess.attributes {
		attributes[name] = value
	}

	store.entries[sess.ID] = entry{
		attributes: attributes,
		deadline:   time.Now().Add(store.ttl),
	}
	return nil
}

func (store *MemoryStore) Delete(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.entries, id)
	return nil
}

// PruneExpired drops every entry past its deadline and reports how many
// were removed.
func (store *MemoryStore) PruneExpired() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	pruned := 0
	for id, ent := range store.entries {
		if !now.Before(ent.deadline) {
			delete(store.entries, id)
			pruned++
		}
	}
	return pruned
}

func (store *MemoryStore) Close() error {
	return nil
}
