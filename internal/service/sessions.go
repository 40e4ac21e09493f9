package service

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/set-night/mediagrab/internal/domain"
)

// SessionStore keeps in-flight sessions in memory. Each key has its own lock, so
// operations on different keys never wait on each other.
type SessionStore struct {
	slots sync.Map // domain.SessionKey -> *sessionSlot
	now   func() time.Time
}

type sessionSlot struct {
	mu      sync.Mutex
	session *domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

// Create starts a session for key, replacing any previous one. The replaced
// session, if any, is returned so its messages can be cleaned up.
func (s *SessionStore) Create(key domain.SessionKey, url string, meta domain.Metadata, messageIDs []int) (created, replaced *domain.Session) {
	sess := &domain.Session{
		ID:         ulid.Make().String(),
		Key:        key,
		State:      domain.StateAwaitingFormat,
		URL:        url,
		Metadata:   meta,
		MessageIDs: append([]int(nil), messageIDs...),
		CreatedAt:  s.now(),
	}

	prev, loaded := s.slots.Swap(key, &sessionSlot{session: sess})
	if loaded {
		replaced = takeSlot(prev.(*sessionSlot))
	}
	return sess.Clone(), replaced
}

// Get returns a copy of the session for key.
func (s *SessionStore) Get(key domain.SessionKey) (*domain.Session, bool) {
	v, ok := s.slots.Load(key)
	if !ok {
		return nil, false
	}
	slot := v.(*sessionSlot)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.session == nil {
		return nil, false
	}
	return slot.session.Clone(), true
}

// Update applies fn to the stored session under the key's lock.
func (s *SessionStore) Update(key domain.SessionKey, fn func(*domain.Session)) error {
	v, ok := s.slots.Load(key)
	if !ok {
		return domain.ErrSessionNotFound
	}
	slot := v.(*sessionSlot)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.session == nil {
		return domain.ErrSessionNotFound
	}
	fn(slot.session)
	return nil
}

// Destroy removes the session for key. Destroying an absent key is a no-op.
func (s *SessionStore) Destroy(key domain.SessionKey) *domain.Session {
	v, ok := s.slots.LoadAndDelete(key)
	if !ok {
		return nil
	}
	return takeSlot(v.(*sessionSlot))
}

// DestroyIf removes the session for key only if its id matches, so a pipeline
// finishing late cannot drop a session created after it started.
func (s *SessionStore) DestroyIf(key domain.SessionKey, id string) bool {
	v, ok := s.slots.Load(key)
	if !ok {
		return false
	}
	slot := v.(*sessionSlot)
	slot.mu.Lock()
	match := slot.session != nil && slot.session.ID == id
	if match {
		slot.session = nil
	}
	slot.mu.Unlock()
	if match {
		s.slots.CompareAndDelete(key, slot)
	}
	return match
}

// Sweep removes sessions older than ttl and returns them.
func (s *SessionStore) Sweep(ttl time.Duration) []*domain.Session {
	now := s.now()
	var expired []*domain.Session
	s.slots.Range(func(k, v any) bool {
		slot := v.(*sessionSlot)
		slot.mu.Lock()
		if slot.session != nil && slot.session.Expired(now, ttl) && slot.session.State == domain.StateAwaitingFormat {
			expired = append(expired, slot.session)
			slot.session = nil
		}
		empty := slot.session == nil
		slot.mu.Unlock()
		if empty {
			s.slots.CompareAndDelete(k, slot)
		}
		return true
	})
	return expired
}

// Len counts live sessions.
func (s *SessionStore) Len() int {
	n := 0
	s.slots.Range(func(_, v any) bool {
		slot := v.(*sessionSlot)
		slot.mu.Lock()
		if slot.session != nil {
			n++
		}
		slot.mu.Unlock()
		return true
	})
	return n
}

func takeSlot(slot *sessionSlot) *domain.Session {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	sess := slot.session
	slot.session = nil
	return sess
}
