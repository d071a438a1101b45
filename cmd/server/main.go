// Command server serves the learning style inventory: the questionnaire
// pages, the JSON assessment API, health and metrics.
//
// @title           Learning Style Inventory API
// @version         1.0
// @description     Scores 48-item learning style questionnaires and classifies the learner.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ZanzyTHEbar/learning-style-o-meter/docs"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/config"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/database"
	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/frontend"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/model"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/privacy"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

var version = "dev"

const retentionInterval = time.Hour

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	if err := run(*configPath, appLogger); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, appLogger *monitoring.Logger) error {
	cfg, err := config.NewLoader(appLogger.Logger).Load(configPath)
	if err != nil {
		return apperrors.NewConfigurationError("invalid configuration", err)
	}
	gin.SetMode(cfg.Server.Mode)
	if cfg.Server.Mode == gin.DebugMode {
		appLogger.SetLevel(slog.LevelDebug)
	}

	// The model must load before anything listens
	start := time.Now()
	predictor, err := newPredictor(cfg)
	if err != nil {
		return err
	}
	info := predictor.Info()
	appLogger.ModelLogger(cfg.Model.Path, info.Kind, len(info.Classes), time.Since(start))

	db, err := database.NewDB(cfg.Database.DataDir)
	if err != nil {
		return err
	}
	defer apperrors.SafeClose(db, "database")
	repo := database.NewRepository(db)

	appMetrics := monitoring.NewMetrics()

	assessmentCache := cache.NewCache(repo, cfg.Server.CacheTTL, appMetrics)
	defer assessmentCache.Close()

	retention := privacy.NewRetentionService(assessmentCache,
		time.Duration(cfg.Database.RetentionDays)*24*time.Hour, appLogger.Logger)
	background, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go retention.Run(background, retentionInterval)

	redisClient, err := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Continuing without Redis", "error", err)
	}
	defer apperrors.SafeClose(redisClient, "redis")

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		IPLimitPerMin:   cfg.RateLimit.PerMinute,
		BurstMultiplier: cfg.RateLimit.BurstMultiplier,
	}, appMetrics)
	defer limiter.Close()

	renderer, err := frontend.NewRenderer()
	if err != nil {
		return err
	}

	checks := map[string]HealthChecker{
		"database": db.PingContext,
	}
	if redisClient.IsEnabled() {
		checks["redis"] = redisClient.HealthCheck
	}

	srv := NewServer(Dependencies{
		Config:    cfg,
		Analyzer:  analysis.NewAnalyzer(analysis.NewAggregator(cfg.Scoring.TreatMissingAsZero), predictor),
		Model:     info,
		Store:     assessmentCache,
		Lister:    repo,
		Retention: retention,
		Limiter:   limiter,
		Renderer:  renderer,
		Metrics:   appMetrics,
		Logger:    appLogger,
		Checks:    checks,
	})

	router, err := srv.setupRouter()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.SystemLogger("server_start", "listening on :"+cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return err
	}

	slog.Info("Server exited")
	return nil
}

func newPredictor(cfg *config.Config) (*model.Predictor, error) {
	var opts []model.Option
	if cfg.Model.NoiseSeed != nil {
		opts = append(opts, model.WithNoise(model.NewSeededNormalNoise(*cfg.Model.NoiseSeed)))
	}
	return model.NewPredictor(cfg.Model.Path, opts...)
}
