package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"github.com/continuumhq/continuum-server/internal/config"
	"github.com/continuumhq/continuum-server/internal/domain/chat"
	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/feedback"
	"github.com/continuumhq/continuum-server/internal/domain/memory"
	"github.com/continuumhq/continuum-server/internal/domain/pulse"
	"github.com/continuumhq/continuum-server/internal/domain/purge"
	"github.com/continuumhq/continuum-server/internal/domain/signup"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/domain/workflow"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/repository/chatrepo"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/repository/entityrepo"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/repository/feedbackrepo"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/repository/memoryrepo"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/repository/pulserepo"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/repository/signuprepo"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/repository/tenantrepo"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/repository/userrepo"
	"github.com/continuumhq/continuum-server/internal/infrastructure/logger"
	"github.com/continuumhq/continuum-server/internal/infrastructure/maintenance"
	"github.com/continuumhq/continuum-server/internal/infrastructure/modelcatalog"
	"github.com/continuumhq/continuum-server/internal/infrastructure/observability"
	"github.com/continuumhq/continuum-server/internal/infrastructure/queueclient"
	"github.com/continuumhq/continuum-server/internal/infrastructure/toolcatalog"
	"github.com/continuumhq/continuum-server/internal/infrastructure/voicecatalog"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/handlers"
)

// entityRefLister adapts the entity layer to the pulse screen's filter
// drop-down.
type entityRefLister struct {
	entities *entity.Service
}

func (l *entityRefLister) ListRefs(ctx context.Context) ([]pulse.EntityRef, error) {
	summaries, err := l.entities.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]pulse.EntityRef, 0, len(summaries))
	for _, s := range summaries {
		refs = append(refs, pulse.EntityRef{PublicID: s.PublicID, Name: s.Name})
	}
	return refs, nil
}

// @title Continuum Server
// @version 1.0
// @description Admin and chat API for the Continuum assistant platform
// @BasePath /
// @securityDefinitions.apikey ServiceSecret
// @in header
// @name X-Auth-Secret
func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if cfg.AutoMigrate {
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	userRepo := userrepo.NewUserGormRepository(db)
	entityRepo := entityrepo.NewEntityGormRepository(db)
	memoryRepo := memoryrepo.NewMemoryGormRepository(db)
	chatRepo := chatrepo.NewChatGormRepository(db)
	feedbackRepo := feedbackrepo.NewFeedbackGormRepository(db)
	signupRepo := signuprepo.NewSignupGormRepository(db)
	pulseRepo := pulserepo.NewPulseGormRepository(db)
	tenantRepo := tenantrepo.NewTenantGormRepository(db)

	userService := user.NewService(userRepo)
	memoryService := memory.NewService(memoryRepo)
	entityService := entity.NewService(entityRepo, memoryRepo, log, cfg.DefaultEntityName, cfg.DefaultEntityModel)
	chatService := chat.NewService(chatRepo, entityService)
	feedbackService := feedback.NewService(feedbackRepo)
	signupService := signup.NewService(signupRepo, userService, userRepo, log)
	pulseService := pulse.NewService(pulseRepo, &entityRefLister{entities: entityService})
	purger := purge.NewPurger(userRepo, chatRepo, feedbackRepo, entityService, tenantRepo, log)

	if _, err := entityService.EnsureSystemDefault(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure system default entity")
	}

	toolCatalog, err := toolcatalog.Load(ctx, cfg.ToolCatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load tool catalog")
	}

	provider := handlers.NewProvider(handlers.Dependencies{
		Users:      userService,
		Entities:   entityService,
		Memories:   memoryService,
		Chats:      chatService,
		Feedback:   feedbackService,
		Signups:    signupService,
		Pulses:     pulseService,
		Purger:     purger,
		Operations: workflow.NewRegistry(),
		Queue:      queueclient.NewClient(cfg.QueueAPIURL, cfg.QueueAPIKey, cfg.HTTPTimeout),
		Voices:     voicecatalog.NewClient(cfg.ElevenLabsAPIURL, cfg.ElevenLabsAPIKey, cfg.HTTPTimeout),
		Models:     modelcatalog.NewClient(cfg.ModelAPIURL, cfg.ModelAPIKey),
		Tools:      toolCatalog,
	}, log)

	httpServer := httpserver.New(cfg, log, provider, userRepo)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return httpServer.RunMetrics(gctx) })
	if cfg.MaintenanceEnabled {
		cron := maintenance.NewCrontab(
			pulseService,
			signupService,
			time.Duration(cfg.PulseRetentionDays)*24*time.Hour,
			time.Duration(cfg.SignupRequestMaxAgeDays)*24*time.Hour,
		)
		g.Go(func() error { return cron.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("service stopped with error")
	}

	log.Info().Msg("service exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
