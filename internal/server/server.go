// Package server exposes the generation pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/joseph-ayodele/system-prompt-generator/internal/async"
	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
	"github.com/joseph-ayodele/system-prompt-generator/internal/export"
	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
)

// Pinger reports database health.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// Deps are the collaborators of the HTTP layer. Repo, Queue, Export and DB
// are optional; routes that need a missing one answer 503.
type Deps struct {
	Generator async.Generator
	Repo      repository.GenerationRepository
	Queue     async.Queue
	Export    *export.Service
	DB        Pinger
	Config    common.ServerConfig
	Logger    *slog.Logger
}

type Server struct {
	e      *echo.Echo
	gen    async.Generator
	repo   repository.GenerationRepository
	queue  async.Queue
	export *export.Service
	db     Pinger
	cfg    common.ServerConfig
	logger *slog.Logger
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Config.UploadDir == "" {
		d.Config.UploadDir = "uploads"
	}
	s := &Server{
		e:      echo.New(),
		gen:    d.Generator,
		repo:   d.Repo,
		queue:  d.Queue,
		export: d.Export,
		db:     d.DB,
		cfg:    d.Config,
		logger: d.Logger,
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.HTTPErrorHandler = s.errorHandler
	s.middleware()
	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) middleware() {
	s.e.Use(middleware.Recover())
	s.e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(common.WithRequestID(req.Context(), id)))
		},
	}))
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  origins,
		ExposeHeaders: []string{echo.HeaderContentDisposition, HeaderGenerationID},
	}))
	if s.cfg.MaxUploadBytes > 0 {
		s.e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", s.cfg.MaxUploadBytes>>10)))
	}
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.Warn("http.request", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.Info("http.request", attrs...)
			return nil
		},
	}))
}

func (s *Server) routes() {
	s.e.POST("/generate/", s.handleGenerate)
	s.e.POST("/generate", s.handleGenerate)

	s.e.GET("/generations", s.handleListGenerations)
	s.e.GET("/generations/export.xlsx", s.handleExport)
	s.e.GET("/generations/:id", s.handleGetGeneration)
	s.e.GET("/generations/:id/document", s.handleGenerationDocument)

	s.e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.db != nil {
		if err := s.db.HealthCheck(c.Request().Context(), 2*time.Second); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
