package infrastructure

import (
	"sync"

	"chatrelay/internal/entities"
)

// MemorySessionStore keeps sessions in process memory for the process lifetime.
// Entries are created lazily and never removed; termination resets them in place.
type MemorySessionStore struct {
	sessions map[string]*entities.Session
	mu       sync.RWMutex
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*entities.Session),
	}
}

// Get returns a copy of the user's session, creating it on first contact.
func (s *MemorySessionStore) Get(userID string) entities.Session {
	s.mu.RLock()
	session, exists := s.sessions[userID]
	if exists {
		c := session.Clone()
		s.mu.RUnlock()
		return c
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have created it between the locks.
	if session, exists = s.sessions[userID]; !exists {
		fresh := entities.NewSession(userID)
		session = &fresh
		s.sessions[userID] = session
	}
	return session.Clone()
}

// Set replaces the stored session for session.UserID.
func (s *MemorySessionStore) Set(session entities.Session) {
	c := session.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = &c
}

// Reset returns the user's session to the initial inactive state.
func (s *MemorySessionStore) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[userID]
	if !exists {
		fresh := entities.NewSession(userID)
		s.sessions[userID] = &fresh
		return
	}
	session.Reset()
}

// Len returns the number of known users.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ActiveCount returns how many sessions are currently in a live conversation.
func (s *MemorySessionStore) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, session := range s.sessions {
		if session.Active {
			n++
		}
	}
	return n
}
