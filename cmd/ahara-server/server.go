package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/config"
	"github.com/ahara/ahara/internal/domain/analysis"
	"github.com/ahara/ahara/internal/domain/dietchart"
	"github.com/ahara/ahara/internal/domain/food"
	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/domain/summary"
	"github.com/ahara/ahara/internal/platform/auth"
	"github.com/ahara/ahara/internal/platform/db"
	"github.com/ahara/ahara/internal/platform/middleware"
	"github.com/ahara/ahara/internal/platform/telemetry"
)

type routeRegistrar interface {
	RegisterRoutes(api *echo.Group)
}

// routerDeps is everything newRouter needs; the database only enters through
// health and clinic so the router can be built without one.
type routerDeps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	metrics  *telemetry.Provider
	health   echo.HandlerFunc
	clinic   echo.MiddlewareFunc
	handlers []routeRegistrar
}

func newRouter(d routerDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(d.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(d.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Clinic-ID", "X-Request-ID"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	if d.metrics != nil && d.cfg.MetricsEnabled {
		e.Use(d.metrics.Middleware())
	}

	jwtCfg := auth.JWTConfig{
		Issuer:   d.cfg.AuthIssuer,
		Audience: d.cfg.AuthAudience,
		Secret:   []byte(d.cfg.AuthJWTSecret),
		Skipper:  auth.AuthSkipper,
	}
	if d.cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(jwtCfg))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}

	// After auth so the bucket key can include the token's clinic.
	rl := middleware.DefaultRateLimitConfig()
	if d.cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = d.cfg.RateLimitRPS
	}
	if d.cfg.RateLimitBurst > 0 {
		rl.BurstSize = d.cfg.RateLimitBurst
	}
	rl.Skipper = auth.AuthSkipper
	e.Use(middleware.RateLimit(rl))

	e.GET("/health", d.health)
	e.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"version":         version,
			"catalog_version": assessment.CatalogVersion,
		})
	})
	if d.metrics != nil && d.cfg.MetricsEnabled {
		e.GET("/metrics", d.metrics.Handler())
	}

	api := e.Group("/api/v1", d.clinic)
	for _, h := range d.handlers {
		h.RegisterRoutes(api)
	}
	return e
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.Env)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var metrics *telemetry.Provider
	if cfg.MetricsEnabled {
		metrics, err = telemetry.NewProvider("ahara")
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		err = metrics.RegisterPoolStats(func() (int32, int32, int32) {
			s := pool.Stat()
			return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
		})
		if err != nil {
			return fmt.Errorf("register pool metrics: %w", err)
		}
	}

	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	analysisSvc := analysis.NewService(analysis.NewRepoPG(pool), patientSvc, observer(metrics), logger)
	catalog, err := food.Default()
	if err != nil {
		return fmt.Errorf("load food catalog: %w", err)
	}
	chartSvc := dietchart.NewService(dietchart.NewRepoPG(pool), patientSvc, analysisSvc, catalog, observer(metrics), logger)

	summaryOpts := []summary.Option{
		summary.WithFork(func(ctx context.Context) (context.Context, func(), error) {
			return db.Fork(ctx, pool)
		}),
	}
	if metrics != nil {
		summaryOpts = append(summaryOpts, summary.WithObserver(metrics))
	}
	summarySvc, err := summary.NewService(patientSvc, analysisSvc, chartSvc, cfg.SummaryCacheSize, summaryOpts...)
	if err != nil {
		return fmt.Errorf("init summary cache: %w", err)
	}
	for _, src := range []interface{ OnChange(func(uuid.UUID)) }{patientSvc, analysisSvc, chartSvc} {
		src.OnChange(summarySvc.Invalidate)
	}

	e := newRouter(routerDeps{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		health: db.HealthHandler(pool, func() db.PoolStats {
			return db.GetPoolStats(pool)
		}, version),
		clinic: db.ClinicMiddleware(pool, cfg.DefaultClinic),
		handlers: []routeRegistrar{
			patient.NewHandler(patientSvc),
			analysis.NewHandler(analysisSvc),
			dietchart.NewHandler(chartSvc),
			food.NewHandler(catalog),
			summary.NewHandler(summarySvc),
		},
	})

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// derivationObserver is what the analysis and diet chart services report to.
type derivationObserver interface {
	RecordDerivation(operation, outcome string, took time.Duration)
	RecordDominant(category string)
}

// observer keeps a nil provider from becoming a non-nil interface.
func observer(p *telemetry.Provider) derivationObserver {
	if p == nil {
		return nil
	}
	return p
}
