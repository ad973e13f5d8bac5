package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"livequiz-service/internal/domain"
)

// SessionRepository abstracts how live sessions are registered by room code
// (in-memory, Redis, etc). Register reports false when the code is taken.
type SessionRepository interface {
	Register(roomCode string, sess *Session) bool
	Get(roomCode string) (*Session, bool)
	Delete(roomCode string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Service owns the room-code registry and exposes the session use cases to
// the transport layer.
type Service struct {
	sessions SessionRepository
	quizzes  QuizRepository
	cfg      Config
	bounds   domain.QuestionSetBounds

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(store SessionRepository, quizzes QuizRepository, cfg Config) *Service {
	return &Service{
		sessions: store,
		quizzes:  quizzes,
		cfg:      cfg,
		bounds:   domain.DefaultQuestionSetBounds,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create validates the quiz and brings up a live session under a fresh room
// code. The session's run loop starts immediately; the registry entry is
// removed once the session ends.
func (s *Service) Create(ctx context.Context, quizID string) (*Session, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := domain.NewQuestionSet(quiz.Questions, s.bounds)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 20; attempt++ {
		code := s.newRoomCode()
		sess := newSession(uuid.New().String(), code, quiz, questions, s.cfg)
		if !s.sessions.Register(code, sess) {
			continue
		}
		go sess.run()
		go func() {
			<-sess.Done()
			s.sessions.Delete(code)
		}()
		return sess, nil
	}
	return nil, errors.New("could not allocate a unique room code")
}

// Lookup resolves a room code to its live session.
func (s *Service) Lookup(roomCode string) (*Session, error) {
	sess, ok := s.sessions.Get(roomCode)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return sess, nil
}

// Join validates the room code and registers a participant.
func (s *Service) Join(_ context.Context, roomCode, displayName string) (*domain.Participant, *Session, error) {
	sess, ok := s.sessions.Get(roomCode)
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	p, err := sess.Join(displayName)
	if err != nil {
		if errors.Is(err, domain.ErrSessionEnded) {
			return nil, nil, domain.ErrRoomClosed
		}
		return nil, nil, err
	}
	return p, sess, nil
}

// roomCodeAlphabet avoids characters players commonly misread.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (s *Service) newRoomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := make([]byte, 6)
	for i := range code {
		code[i] = roomCodeAlphabet[s.rnd.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
