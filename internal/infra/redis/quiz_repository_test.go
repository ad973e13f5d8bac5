package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(client, loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Title != "Sample Quiz" || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:content:quiz-1") {
		t.Fatal("quiz blob should be cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz from cache: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Questions[0].Options[1].Correct != true {
		t.Fatal("cached quiz must round-trip answer keys intact")
	}
}

func TestQuizRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestQuizRepositoryPropagatesLoaderErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{}),
	}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
	if mr.Exists("quiz:content:missing") {
		t.Fatal("errors must not be cached")
	}
}

type countingLoader struct {
	memory.QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Sample Quiz",
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "What is 2 + 2?",
				Type: domain.MultipleChoice,
				Options: []domain.Option{
					{ID: "o1", Text: "3", Correct: false},
					{ID: "o2", Text: "4", Correct: true},
				},
				TimeLimitSeconds: 30,
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
