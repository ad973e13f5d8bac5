package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"livequiz-service/internal/session"
)

// SessionStore is a Redis-aware implementation of session.SessionRepository.
// Notes:
//   - Live sessions are in-process objects (the run loop is local), so the
//     store keeps a local map and uses Redis only to claim room codes and
//     mark liveness across instances.
//   - SetNX on the room key is what makes codes unique cluster-wide while a
//     session is live.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*session.Session),
	}
}

func (s *SessionStore) Register(roomCode string, sess *session.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.sessions[roomCode]; taken {
		return false
	}
	claimed, err := s.client.SetNX(context.Background(), s.key(roomCode), sess.ID(), s.ttl).Result()
	if err != nil || !claimed {
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
	_ = s.client.Del(context.Background(), s.key(roomCode)).Err()
}

func (s *SessionStore) key(roomCode string) string {
	return "quiz:room:" + roomCode
}
