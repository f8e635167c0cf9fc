// Package preview serves uploaded or fetched binary assets back to the browser
// while a form is open.
//
// Every preview belongs to a scope, one per open form, and every scope belongs
// to a session owner. A scope is released exactly once: on submit success,
// on cancel, on logout of its owner, or by the TTL sweep, whichever comes
// first. Later releases are no-ops.
package preview

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"clinic-console/internal/core/domain"
)

// Item is one stored preview
type Item struct {
	ID          string
	Scope       string
	ContentType string
	Data        []byte
}

type scope struct {
	owner   string
	items   map[string]struct{}
	touched time.Time
}

// Store keeps previews in memory
type Store struct {
	mu       sync.Mutex
	items    map[string]*Item
	scopes   map[string]*scope
	maxBytes int64
	now      func() time.Time
}

// NewStore returns an empty store. maxBytes bounds a single preview; zero
// means unbounded.
func NewStore(maxBytes int64) *Store {
	return &Store{
		items:    make(map[string]*Item),
		scopes:   make(map[string]*scope),
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// NewScope opens a scope for owner
func (s *Store) NewScope(owner string) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scopes[id] = &scope{owner: owner, items: make(map[string]struct{}), touched: s.now()}
	return id
}

// Open reports whether scope exists and belongs to owner
func (s *Store) Open(scopeID, owner string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scopes[scopeID]
	return ok && sc.owner == owner
}

// Acquire stores data under scope and returns its preview id
func (s *Store) Acquire(scopeID string, data []byte, contentType string) (string, error) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", domain.ErrPreviewTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scopes[scopeID]
	if !ok {
		return "", domain.ErrPreviewNotFound
	}

	id := uuid.NewString()
	s.items[id] = &Item{ID: id, Scope: scopeID, ContentType: contentType, Data: data}
	sc.items[id] = struct{}{}
	sc.touched = s.now()
	return id, nil
}

// Get returns a preview
func (s *Store) Get(id string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrPreviewNotFound
	}
	return item, nil
}

// Release drops a single preview, e.g. when the user picks another file
func (s *Store) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return
	}
	delete(s.items, id)
	if sc, ok := s.scopes[item.Scope]; ok {
		delete(sc.items, id)
	}
}

// ReleaseScope drops a scope and all its previews. It returns how many
// previews were released; releasing twice returns 0.
func (s *Store) ReleaseScope(scopeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.releaseLocked(scopeID)
}

// ReleaseOwner drops every scope of owner
func (s *Store) ReleaseOwner(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sc := range s.scopes {
		if sc.owner == owner {
			n += s.releaseLocked(id)
		}
	}
	return n
}

// Sweep releases scopes untouched for longer than ttl
func (s *Store) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	n := 0
	for id, sc := range s.scopes {
		if sc.touched.Before(cutoff) {
			n += s.releaseLocked(id)
		}
	}
	return n
}

// Len returns the number of stored previews
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (s *Store) releaseLocked(scopeID string) int {
	sc, ok := s.scopes[scopeID]
	if !ok {
		return 0
	}
	for id := range sc.items {
		delete(s.items, id)
	}
	delete(s.scopes, scopeID)
	return len(sc.items)
}
