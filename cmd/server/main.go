// The workforce console API server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity"
	"github.com/OmarHalima/workforce-console/internal/activity/producer"
	"github.com/OmarHalima/workforce-console/internal/assist"
	"github.com/OmarHalima/workforce-console/internal/audit"
	auditrepo "github.com/OmarHalima/workforce-console/internal/audit/repository"
	"github.com/OmarHalima/workforce-console/internal/config"
	"github.com/OmarHalima/workforce-console/internal/db"
	identityrepo "github.com/OmarHalima/workforce-console/internal/identity/repository"
	identityservice "github.com/OmarHalima/workforce-console/internal/identity/service"
	knowledgerepo "github.com/OmarHalima/workforce-console/internal/knowledge/repository"
	"github.com/OmarHalima/workforce-console/internal/logger"
	membershiprepo "github.com/OmarHalima/workforce-console/internal/membership/repository"
	"github.com/OmarHalima/workforce-console/internal/observe"
	phaserepo "github.com/OmarHalima/workforce-console/internal/phase/repository"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	policyrepo "github.com/OmarHalima/workforce-console/internal/policy/repository"
	projectrepo "github.com/OmarHalima/workforce-console/internal/project/repository"
	"github.com/OmarHalima/workforce-console/internal/scheduler"
	"github.com/OmarHalima/workforce-console/internal/security"
	"github.com/OmarHalima/workforce-console/internal/server"
	"github.com/OmarHalima/workforce-console/internal/server/middleware"
	sessionrepo "github.com/OmarHalima/workforce-console/internal/session/repository"
	taskrepo "github.com/OmarHalima/workforce-console/internal/task/repository"
	userrepo "github.com/OmarHalima/workforce-console/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.DatabaseURL == "" {
		zlog.Fatal("DATABASE_URL is not set")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		zlog.Fatal("parse JWT private key", zap.Error(err))
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		zlog.Fatal("parse JWT public key", zap.Error(err))
	}
	tokens := security.NewTokenProvider(privateKey, publicKey,
		cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := observe.NewProviders(ctx, cfg.OTLPEndpoint, "workforce-console", cfg.OTLPInsecure, zlog)
	if err != nil {
		zlog.Fatal("observability setup", zap.Error(err))
	}
	providers.SetGlobal()

	users := userrepo.NewPostgresRepository(database)
	identities := identityrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	projects := projectrepo.NewPostgresRepository(database)
	memberships := membershiprepo.NewPostgresRepository(database)
	tasks := taskrepo.NewPostgresRepository(database)
	phases := phaserepo.NewPostgresRepository(database)
	articles := knowledgerepo.NewPostgresRepository(database)
	policies := policyrepo.NewPostgresRepository(database)
	auditLogs := auditrepo.NewPostgresRepository(database)

	var events activity.EventEmitter
	kafkaProducer := producer.NewKafkaProducer(cfg.ActivityKafkaBrokersList(), cfg.ActivityKafkaTopic)
	if kafkaProducer != nil {
		events = kafkaProducer
		zlog.Info("activity pipeline enabled", zap.String("topic", cfg.ActivityKafkaTopic))
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	authService := identityservice.NewAuthService(users, identities, sessions, hasher, tokens, cfg.RefreshTTL())
	evaluator := engine.NewOPAEvaluator(policies, zlog)
	auditor := audit.NewLogger(auditLogs, middleware.ClientIPFromContext, zlog)

	gen, err := assist.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.AssistModel)
	if err != nil {
		zlog.Fatal("assist setup", zap.Error(err))
	}
	var assistGen assist.Generator
	if gen != nil {
		assistGen = gen
		zlog.Info("assist panel enabled", zap.String("model", cfg.AssistModel))
	}
	assistService := assist.NewService(assistGen, projects, tasks, zlog)

	jobs, err := scheduler.NewManager(sessions, tasks, events, zlog)
	if err != nil {
		zlog.Fatal("scheduler setup", zap.Error(err))
	}
	jobs.Start()

	router := server.NewRouter(server.Deps{
		Log:           zlog,
		DB:            database,
		Tokens:        tokens,
		Policy:        evaluator,
		Auditor:       auditor,
		Events:        events,
		AuthService:   authService,
		AssistService: assistService,
		Users:         users,
		Projects:      projects,
		Memberships:   memberships,
		Tasks:         tasks,
		Phases:        phases,
		Articles:      articles,
		Policies:      policies,
		AuditLogs:     auditLogs,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}

	jobs.Stop()

	if kafkaProducer != nil {
		// Give in-flight async emits a chance to reach the broker.
		time.Sleep(activity.ShutdownDrainDuration)
		if err := kafkaProducer.Close(); err != nil {
			zlog.Warn("kafka producer close", zap.Error(err))
		}
	}

	if err := providers.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("observability shutdown", zap.Error(err))
	}
}
