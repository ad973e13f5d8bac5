package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"livequiz-service/internal/config"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
	pgloader "livequiz-service/internal/infra/postgres"
	redisinfra "livequiz-service/internal/infra/redis"
	"livequiz-service/internal/session"
	transport "livequiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the live quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 4*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo session.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var store session.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := session.NewService(store, quizRepo, session.Config{
		BasePoints: cfg.Session.BasePoints,
	})
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/sessions", wsHandler.CreateSession)
	mux.HandleFunc("/ws/host", wsHandler.ServeHost)
	mux.HandleFunc("/ws/play", wsHandler.ServePlay)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting livequiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides a demo quiz for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	mc := func(id, text string, options ...domain.Option) domain.Question {
		return domain.Question{ID: id, Text: text, Type: domain.MultipleChoice, Options: options, TimeLimitSeconds: 30}
	}
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "General Knowledge Warmup",
			Questions: []domain.Question{
				mc("q1", "What is 2 + 2?",
					domain.Option{ID: "o1", Text: "3"},
					domain.Option{ID: "o2", Text: "4", Correct: true},
					domain.Option{ID: "o3", Text: "5"},
				),
				mc("q2", "Which planet is closest to the sun?",
					domain.Option{ID: "o1", Text: "Venus"},
					domain.Option{ID: "o2", Text: "Mars"},
					domain.Option{ID: "o3", Text: "Mercury", Correct: true},
				),
				{ID: "q3", Text: "The Pacific is the largest ocean.", Type: domain.TrueFalse, CorrectAnswer: "true", TimeLimitSeconds: 20},
				{ID: "q4", Text: "Name the process plants use to make food from sunlight.", Type: domain.ShortAnswer,
					CorrectAnswer: "Photosynthesis converts light into chemical energy.",
					Keywords:      []string{"photosynthesis"}, TimeLimitSeconds: 45},
				mc("q5", "How many continents are there?",
					domain.Option{ID: "o1", Text: "5"},
					domain.Option{ID: "o2", Text: "6"},
					domain.Option{ID: "o3", Text: "7", Correct: true},
				),
			},
		},
	}
}
