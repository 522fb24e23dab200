// Command server runs the study-material backend: PDF ingestion, AI page
// explanations, narration, quizzes, and the HTTP API that serves them.
//
// @title           Study Backend API
// @version         1.0
// @description     Turns uploaded PDFs into narrated study material.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/studybuddy/go-study-backend/docs"
	"github.com/studybuddy/go-study-backend/internal/ai"
	"github.com/studybuddy/go-study-backend/internal/config"
	httpapi "github.com/studybuddy/go-study-backend/internal/http"
	"github.com/studybuddy/go-study-backend/internal/observability"
	"github.com/studybuddy/go-study-backend/internal/pdf"
	"github.com/studybuddy/go-study-backend/internal/repo"
	"github.com/studybuddy/go-study-backend/internal/services"
	"github.com/studybuddy/go-study-backend/internal/storage"
	"github.com/studybuddy/go-study-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	logger := log.With().Str("service", cfg.OTEL.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	// Content store: local tier always, remote tier when credentials allow.
	local, err := storage.NewLocal(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("local storage init failed")
	}
	var remote storage.Remote
	if cfg.ObjectStore.Enabled() {
		r, err := storage.NewMinioRemote(
			cfg.ObjectStore.Endpoint,
			cfg.ObjectStore.AccessKey,
			cfg.ObjectStore.SecretKey,
			cfg.ObjectStore.Bucket,
			cfg.ObjectStore.UseSSL,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("object store unreachable, continuing local-only")
		} else {
			remote = r
			logger.Info().Str("bucket", cfg.ObjectStore.Bucket).Msg("object store connected")
		}
	} else {
		logger.Info().Msg("object store not configured, running local-only")
	}
	store := storage.New(local, remote, logger)

	// Pull the replicated catalog down before opening it, so a fresh node
	// starts with the shared document index.
	if err := services.RestoreCatalog(ctx, store, cfg.DBPath, logger); err != nil {
		logger.Warn().Err(err).Msg("catalog restore failed, starting from local state")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			logger.Warn().Err(err).Msg("database tracing setup failed")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}

	gemini, err := ai.NewGemini(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("explanation model init failed")
	}
	speech, err := ai.NewSpeech(cfg.AI.TTSAPIKey, cfg.AI.TTSVoice, cfg.AI.TTSLanguage)
	if err != nil {
		logger.Fatal().Err(err).Msg("narration init failed")
	}
	raster := pdf.NewRasterizer(pdf.DefaultJPEGQuality)

	catalog := services.NewCatalog(db, cfg.DBPath, store, logger)
	svc := httpapi.Services{
		Auth:      services.NewAuthService(catalog, cfg.SessionTTL),
		Ingest:    services.NewIngestService(catalog, store, raster, gemini, speech, cfg.MaxSpeechLen, logger),
		Retrieval: services.NewRetrievalService(catalog, store, speech, cfg.SignedURLTTL, cfg.MaxSpeechLen, logger),
		Quiz:      services.NewQuizService(store, gemini, cfg.MaxQuizSource, logger),
		Question:  services.NewQuestionService(store, gemini, logger),
		Materials: services.NewMaterialsService(store, logger),
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
