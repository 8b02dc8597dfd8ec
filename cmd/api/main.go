package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/componentlens/internal/application"
	appanalysis "github.com/bryanwahyu/componentlens/internal/application/analysis"
	"github.com/bryanwahyu/componentlens/internal/config"
	"github.com/bryanwahyu/componentlens/internal/domain/ai"
	domain "github.com/bryanwahyu/componentlens/internal/domain/analysis"
	"github.com/bryanwahyu/componentlens/internal/infra/ai/gemini"
	"github.com/bryanwahyu/componentlens/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/componentlens/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/componentlens/internal/infra/db/postgres"
	"github.com/bryanwahyu/componentlens/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/componentlens/internal/infra/storage"
	"github.com/bryanwahyu/componentlens/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, repo, failures, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: driver=%s err=%v", cfg.Database.Driver, err)
	}
	defer db.Close()

	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	vision := newVisionClient(cfg)
	info := vision.Info()
	log.Printf("vision provider=%s detection_model=%s analysis_model=%s",
		info.Provider, info.DetectionModel, info.AnalysisModel)

	svc := &appanalysis.Service{
		Repo:     repo,
		Failures: failures,
		Images:   store,
		Vision:   vision,
		Clock:    application.SystemClock{},
	}

	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Stack(cfg.Auth, limiter)...)
	mux.Mount("/", httpserver.NewRouter(svc, httpserver.Options{
		Checkers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
			"storage":  store,
		},
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (*sql.DB, domain.Repository, domain.FailureRepository, error) {
	if cfg.Database.Driver == config.DriverMySQL {
		db, err := mysqlp.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, mysqlp.NewAnalysisRepository(db), mysqlp.NewFailureRepository(db), nil
	}
	db, err := pgp.Connect(ctx, cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return nil, nil, nil, err
	}
	return db, pgp.NewAnalysisRepository(db), pgp.NewFailureRepository(db), nil
}

func newVisionClient(cfg *config.Config) ai.Client {
	if cfg.AI.Provider == config.ProviderOpenAI {
		return openai.NewClient(cfg.AI.OpenAIKey, cfg.AI.DetectionModel, cfg.AI.AnalysisModel)
	}
	return gemini.NewClient(cfg.AI.GeminiKey, cfg.AI.DetectionModel, cfg.AI.AnalysisModel)
}
