package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/agrovest/agrovest/internal/config"
	"github.com/agrovest/agrovest/internal/infra/cache"
	"github.com/agrovest/agrovest/internal/infra/database"
	"github.com/agrovest/agrovest/internal/infra/repository"
	"github.com/agrovest/agrovest/internal/present/rest"
	authmw "github.com/agrovest/agrovest/internal/present/rest/middleware"
	"github.com/agrovest/agrovest/internal/service"
	"github.com/agrovest/agrovest/internal/usecase"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = database.MigratePostgres(db)
	if err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(cfg.Server.RedisAddr, cfg.Server.RedisPassword, cfg.Server.RedisDB)
	viewCache := cache.NewViewCache(cfg.Server.MemcachedAddr, cfg.Server.SearchTTL())

	accountRepo := repository.NewAccountRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	contractRepo := repository.NewContractRepository(db)

	authService := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	signalService := service.NewSignalService(rdb)

	identityUC := usecase.NewIdentityUsecase(accountRepo, authService, authService)
	catalogUC := usecase.NewCatalogUsecase(catalogRepo, tokenRepo)
	ledgerUC := usecase.NewLedgerUsecase(tokenRepo, catalogRepo, signalService)
	contractUC := usecase.NewContractUsecase(contractRepo, signalService)
	searchUC := usecase.NewSearchUsecase(tokenRepo, viewCache)

	handler := rest.NewHandler(
		identityUC,
		catalogUC,
		ledgerUC,
		contractUC,
		searchUC,
		signalService,
		cfg.Server.UploadDir,
	)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if cfg.Server.EnableTrace {
		cleanup, err := setupTracer(cfg.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to setup tracer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
		e.Use(otelecho.Middleware("agrovest"))
	}

	auth := authmw.NewAuthMiddleware(authService)
	e.Use(auth.IdentifyIdentity)

	handler.RegisterRoutes(e, auth)

	e.Logger.Fatal(e.Start(cfg.Server.ListenAddr))
}

func setupTracer(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("agrovest"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}, nil
}
