package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"livequiz-service/internal/domain"
)

type countingLoader struct {
	calls   int64
	quizzes map[string]domain.Quiz
}

func (l *countingLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	atomic.AddInt64(&l.calls, 1)
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func testQuiz() domain.Quiz {
	return domain.Quiz{ID: "quiz-1", Title: "Cached Quiz"}
}

func TestQuizRepositoryCachesWithinTTL(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]domain.Quiz{"quiz-1": testQuiz()}}
	repo := NewQuizRepository(loader, time.Minute)

	for i := 0; i < 3; i++ {
		quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
		if err != nil {
			t.Fatalf("GetQuiz: %v", err)
		}
		if quiz.Title != "Cached Quiz" {
			t.Fatalf("unexpected quiz %+v", quiz)
		}
	}
	if n := atomic.LoadInt64(&loader.calls); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}
}

func TestQuizRepositoryRefreshesAfterExpiry(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]domain.Quiz{"quiz-1": testQuiz()}}
	repo := NewQuizRepository(loader, time.Minute)

	now := time.Now()
	repo.clock = func() time.Time { return now }
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}

	// Jump past the TTL plus its jitter allowance.
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("GetQuiz after expiry: %v", err)
	}
	if n := atomic.LoadInt64(&loader.calls); n != 2 {
		t.Fatalf("loader called %d times, want 2", n)
	}
}

func TestQuizRepositoryDoesNotCacheErrors(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]domain.Quiz{}}
	repo := NewQuizRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("err = %v, want ErrQuizNotFound", err)
		}
	}
	if n := atomic.LoadInt64(&loader.calls); n != 2 {
		t.Fatalf("loader called %d times, want 2", n)
	}
}

func TestQuizRepositoryCollapsesConcurrentLoads(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]domain.Quiz{"quiz-1": testQuiz()}}
	repo := NewQuizRepository(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
				t.Errorf("GetQuiz: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := atomic.LoadInt64(&loader.calls); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}
}

func TestStaticQuizLoader(t *testing.T) {
	loader := NewStaticQuizLoader(map[string]domain.Quiz{"quiz-1": testQuiz()})
	quiz, err := loader.LoadQuiz(context.Background(), "quiz-1")
	if err != nil || quiz.ID != "quiz-1" {
		t.Fatalf("LoadQuiz = %+v, %v", quiz, err)
	}
	if _, err := loader.LoadQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
}
