package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mmhmddd/qatra-8eth-sub000/api/swagger"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/handler"
	internalmiddleware "github.com/mmhmddd/qatra-8eth-sub000/internal/middleware"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/repository"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/scheduler"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/service"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/cache"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/config"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/export"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/logger"
	corsmiddleware "github.com/mmhmddd/qatra-8eth-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/mmhmddd/qatra-8eth-sub000/pkg/middleware/requestid"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/validate"
)

const shutdownTimeout = 10 * time.Second

// @title Qatra Admin Console
// @version 0.1.0
// @description Admin console for the volunteer organisation API
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Session.Backend == config.SessionBackendRedis || cfg.Members.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis, logr)
		if err != nil {
			if cfg.Session.Backend == config.SessionBackendRedis {
				logr.Fatal("redis is required for the session backend", zap.Error(err))
			}
			logr.Warn("redis unavailable, member cache falls back to memory", zap.Error(err))
			redisClient = nil
		}
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metricsSvc := service.NewMetricsService()

	var sessionStore service.SessionStore = service.NewMemorySessionStore()
	if cfg.Session.Backend == config.SessionBackendRedis {
		sessionStore = repository.NewRedisSessionRepository(redisClient, cfg.Session.RedisKey, cfg.Session.TTL)
	}
	sessionSvc := service.NewSessionService(sessionStore, logr)

	var cacheRepo service.CacheRepository = service.NewMemoryCacheRepository()
	if redisClient != nil && cfg.Members.CacheEnabled {
		cacheRepo = repository.NewCacheRepository(redisClient, "admin-console:")
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Members.CacheTTL, logr, cfg.Members.CacheEnabled)

	api := repository.NewMemberAPIRepository(cfg.API.BaseURL, logr,
		repository.WithTimeout(cfg.API.Timeout),
		repository.WithRequestObserver(metricsSvc),
	)
	normalizer := service.NewNormalizer()

	memberSvc := service.NewMemberService(service.MemberServiceParams{
		API:        api,
		Session:    sessionSvc,
		Normalizer: normalizer,
		Cache:      cacheSvc,
		Metrics:    metricsSvc,
		Logger:     logr,
		CacheTTL:   cfg.Members.CacheTTL,
	})

	workflow := service.NewJoinRequestWorkflow(api, sessionSvc, normalizer, logr,
		service.WithReconcileDelay(cfg.Workflow.ReconcileDelay),
		service.WithWorkflowMetrics(metricsSvc),
		service.WithAfterMutation(memberSvc.Invalidate),
	)
	workflow.Start(ctx)
	defer workflow.Close()

	reportSvc := service.NewLowLectureReportService(api, sessionSvc, normalizer, metricsSvc, logr)
	exportSvc := service.NewReportExportService(export.NewCSVExporter(true), export.NewPDFExporter(), logr)
	submissionSvc := service.NewJoinSubmissionService(api, validate.Validator(), metricsSvc, logr)

	if cfg.Refresh.Enabled {
		sched, err := scheduler.New(scheduler.Config{
			JoinRequestsSpec: cfg.Refresh.JoinRequestsSpec,
			ReportSpec:       cfg.Refresh.ReportSpec,
		}, workflow, reportSvc, logr)
		if err != nil {
			logr.Fatal("invalid refresh schedule", zap.Error(err))
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	readiness := map[string]handler.ReadinessCheck{}
	if redisClient != nil {
		readiness["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	joinRequestHandler := handler.NewJoinRequestHandler(workflow)
	memberHandler := handler.NewMemberHandler(memberSvc)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc)
	joinFormHandler := handler.NewJoinFormHandler(submissionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)
	sessionHandler := handler.NewSessionHandler(sessionSvc, func(ctx context.Context) {
		// Sign-in loads the list straight away; a failure is already logged by the workflow.
		workflow.FetchAll(ctx)
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.Use(internalmiddleware.WithResponseMeta())
	{
		v1.PUT("/session", internalmiddleware.Audit(logr, "sign_in", ""), sessionHandler.SignIn)
		v1.DELETE("/session", internalmiddleware.Audit(logr, "sign_out", ""), sessionHandler.SignOut)

		v1.POST("/join", joinFormHandler.Submit)

		requests := v1.Group("/join-requests")
		requests.GET("", joinRequestHandler.List)
		requests.POST("/:id/approve", internalmiddleware.Audit(logr, "approve_join_request", "id"), joinRequestHandler.Approve)
		requests.POST("/:id/reject", internalmiddleware.Audit(logr, "reject_join_request", "id"), joinRequestHandler.Reject)
		requests.DELETE("/:id", internalmiddleware.Audit(logr, "delete_join_request", "id"), joinRequestHandler.Delete)

		members := v1.Group("/members")
		members.GET("", memberHandler.List)
		members.GET("/:id", memberHandler.Get)

		reports := v1.Group("/reports/low-lecture")
		reports.GET("", reportHandler.List)
		reports.GET("/export", internalmiddleware.Audit(logr, "export_report", ""), reportHandler.Export)
		reports.DELETE("/:memberId", internalmiddleware.Audit(logr, "remove_from_report", "memberId"), reportHandler.Remove)

		v1.GET("/metrics/summary", metricsHandler.Summary)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "api", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown incomplete", zap.Error(err))
	}
}
