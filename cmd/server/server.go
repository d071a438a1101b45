package main

import (
	"context"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/config"
	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/frontend"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/privacy"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/security"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// maxBodyBytes comfortably fits a 48-item submission
const maxBodyBytes = 64 << 10

// resultCookie carries the id of the last assessment between POST / and GET /result
const resultCookie = "assessment_id"

// AssessmentStore persists and loads assessments
type AssessmentStore interface {
	SaveAssessment(ctx context.Context, a *types.Assessment) error
	GetAssessment(ctx context.Context, id string) (*types.Assessment, error)
	DeleteAssessment(ctx context.Context, id string) error
}

// AssessmentLister serves the listing and summary endpoints
type AssessmentLister interface {
	ListRecent(ctx context.Context, limit int) ([]types.Assessment, error)
	CountByPrediction(ctx context.Context) (map[types.Label]int, error)
}

// HealthChecker reports the status of a dependency
type HealthChecker func(ctx context.Context) error

// Server wires the assessment pipeline to HTTP
type Server struct {
	config    *config.Config
	analyzer  *analysis.Analyzer
	model     types.ModelInfo
	store     AssessmentStore
	lister    AssessmentLister
	retention *privacy.RetentionService
	limiter   *ratelimit.RateLimiter
	renderer  *frontend.Renderer
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	checks    map[string]HealthChecker
}

// Dependencies collects everything NewServer needs
type Dependencies struct {
	Config    *config.Config
	Analyzer  *analysis.Analyzer
	Model     types.ModelInfo
	Store     AssessmentStore
	Lister    AssessmentLister
	Retention *privacy.RetentionService
	Limiter   *ratelimit.RateLimiter
	Renderer  *frontend.Renderer
	Metrics   *monitoring.Metrics
	Logger    *monitoring.Logger
	Checks    map[string]HealthChecker
}

// NewServer creates a server from its dependencies
func NewServer(deps Dependencies) *Server {
	return &Server{
		config:    deps.Config,
		analyzer:  deps.Analyzer,
		model:     deps.Model,
		store:     deps.Store,
		lister:    deps.Lister,
		retention: deps.Retention,
		limiter:   deps.Limiter,
		renderer:  deps.Renderer,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		checks:    deps.Checks,
	}
}

// setupRouter builds the gin engine with middleware and routes
func (s *Server) setupRouter() (*gin.Engine, error) {
	r := gin.New()

	// Monitoring first so it observes every response
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger))

	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	r.Use(security.SecurityHeadersMiddleware(s.config.Server.EnableHSTS))
	r.Use(security.RequestTimeout(s.config.Server.RequestTimeout))
	r.Use(security.BodyLimit(maxBodyBytes))

	staticFS, err := frontend.StaticFS()
	if err != nil {
		return nil, err
	}
	r.GET("/static/*filepath", frontend.StaticHandler(staticFS))

	pages := r.Group("/", security.CSPMiddleware())
	{
		pages.GET("", s.handleIndex)
		pages.POST("", security.ValidateContentType(), s.limiter.IPRateLimitMiddleware(), s.handleSubmitForm)
		pages.GET("result", s.handleResult)
	}

	api := r.Group("/api/v1", cors.New(s.corsConfig()))
	{
		api.POST("/assessments", security.ValidateContentType(), s.limiter.IPRateLimitMiddleware(), s.handleCreateAssessment)
		api.GET("/assessments", s.handleListAssessments)
		api.GET("/assessments/:id", s.handleGetAssessment)
		api.DELETE("/assessments/:id", s.handleDeleteAssessment)
		api.GET("/stats", s.handleStats)
		api.GET("/model", s.handleModel)
	}

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r, nil
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.ExposeHeaders = []string{"Location", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	cfg.MaxAge = 12 * time.Hour

	origins := s.config.Server.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
