package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"lr-validation-backend/internal/adapter/gateway"
	httpadp "lr-validation-backend/internal/adapter/http"
	lrmw "lr-validation-backend/internal/adapter/middleware"
	"lr-validation-backend/internal/adapter/repository/gormrepo"
	"lr-validation-backend/internal/config"
	"lr-validation-backend/internal/domain/invoice"
	"lr-validation-backend/internal/infrastructure/cache"
	"lr-validation-backend/internal/infrastructure/db"
	"lr-validation-backend/internal/infrastructure/retry"
	"lr-validation-backend/internal/infrastructure/storage"
	"lr-validation-backend/internal/usecase/extraction"
	"lr-validation-backend/internal/usecase/field"
	"lr-validation-backend/internal/usecase/ingest"
	"lr-validation-backend/internal/usecase/validation"
	"lr-validation-backend/internal/usecase/workflow"
	"lr-validation-backend/pkg/id"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	// .env is optional; real deployments set LR_* directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.DB.Driver, cfg.DSN(), cfg.DB.LogLevel)
	if err != nil {
		zap.L().Fatal("database", zap.Error(err))
	}
	if cfg.DB.Migrate {
		if err := db.Migrate(gdb); err != nil {
			zap.L().Fatal("migrate", zap.Error(err))
		}
	}

	rdb, err := cache.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		zap.L().Fatal("redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	store, err := storage.New(cfg.Storage.Root, cfg.Storage.Bucket)
	if err != nil {
		zap.L().Fatal("storage", zap.Error(err))
	}

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.Gateway.MaxAttempts
	gw := gateway.NewClient(cfg.Gateway.BaseURL,
		gateway.WithTimeout(cfg.Gateway.Timeout),
		gateway.WithRetry(policy),
		gateway.WithRateLimit(cfg.Gateway.RatePerSec, 5),
	)

	repos := gormrepo.Repos(gdb)
	tx := gormrepo.NewGormUoW(gdb, gormrepo.WithTxTimeout(cfg.DB.Timeout))

	ingestUC := ingest.NewUsecase(repos.Clients, repos.Documents, store, ingest.Config{
		MaxBytes:       cfg.Upload.MaxBytes,
		StorageTimeout: cfg.Storage.Timeout,
		DBTimeout:      cfg.DB.Timeout,
	})
	handlers := httpadp.Handlers{
		Health:     httpadp.NewHandler(),
		Fields:     httpadp.NewFieldHandler(field.NewUsecase(repos.Clients, repos.Fields, tx)),
		Documents:  httpadp.NewDocumentHandler(ingestUC),
		Extraction: httpadp.NewExtractionHandler(extraction.NewUsecase(repos.Documents, tx, gw)),
		Validation: httpadp.NewValidationHandler(validation.NewUsecase(repos, tx, gw, validation.Config{
			Mode:   invoice.Mode(cfg.Validation.Mode),
			Mirror: cfg.Gateway.Mirror,
		})),
		Workflow: httpadp.NewWorkflowHandler(workflow.NewUsecase(repos.Workflow, tx)),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: id.NewID32}),
		lrmw.RequestLogger(),
		middleware.Recover(),
		middleware.BodyLimit(bodyLimit(cfg.Upload.MaxBytes)),
		middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: requestTimeout}),
	)
	httpadp.Register(e, handlers, lrmw.IdempotencyMiddleware(rdb, cfg.Idempotency.TTL))

	go sweepLoop(ctx, ingestUC, cfg.Sweep)

	go func() {
		addr := ":" + cfg.App.Port
		zap.L().Info("listening", zap.String("addr", addr), zap.String("env", cfg.App.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		zap.L().Error("shutdown", zap.Error(err))
	}
}

// bodyLimit leaves room for the multipart envelope around the largest upload.
func bodyLimit(maxUpload int64) string {
	kb := maxUpload/1024 + 64
	return strconv.FormatInt(kb, 10) + "K"
}

// sweepLoop removes abandoned Pending_Upload documents until ctx ends.
func sweepLoop(ctx context.Context, uc *ingest.Usecase, cfg config.SweepConfig) {
	if cfg.Interval <= 0 {
		return
	}
	t := time.NewTicker(cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// a run never outlives its tick
			rctx, cancel := context.WithTimeout(ctx, cfg.Interval)
			res, err := uc.Sweep(rctx, cfg.OlderThan)
			cancel()
			if err != nil {
				zap.L().Warn("sweep failed", zap.Error(err))
				continue
			}
			if res.Removed > 0 || res.Failed > 0 {
				zap.L().Info("sweep", zap.Int("scanned", res.Scanned), zap.Int("removed", res.Removed), zap.Int("failed", res.Failed))
			}
		}
	}
}
