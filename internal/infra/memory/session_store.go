package memory

import (
	"sync"

	"livequiz-service/internal/session"
)

// SessionStore is an in-memory implementation of session.SessionRepository,
// keyed by room code.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Session),
	}
}

// Register claims the room code for the session. Codes stay unique while the
// session is live; Register reports false on a collision.
func (s *SessionStore) Register(roomCode string, sess *session.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.sessions[roomCode]; taken {
		return false
	}
	s.sessions[roomCode] = sess
	return true
}

func (s *SessionStore) Get(roomCode string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[roomCode]
	return sess, ok
}

func (s *SessionStore) Delete(roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, roomCode)
}
