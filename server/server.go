package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xhad/conceptube/internal/models"
	"github.com/xhad/conceptube/internal/types"
	"github.com/xhad/conceptube/pkg/metrics"
)

type Config struct {
	Addr       string
	SampleSize int
	Verbose    bool
	// Gatherer backs /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer
}

type AnalyzeRequest struct {
	YouTubeLink string `json:"youtube_link"`
}

type AnalyzeResponse struct {
	KeyConcepts []models.ConceptMap `json:"key_concepts"`
}

// Server exposes the analysis pipeline over HTTP. The retriever and
// extractor are built once and shared by every request.
type Server struct {
	config    Config
	retriever types.Retriever
	extractor types.ConceptExtractor
	metrics   *metrics.Metrics
	logger    *slog.Logger
	echo      *echo.Echo
}

func NewServer(config Config, retriever types.Retriever, extractor types.ConceptExtractor, m *metrics.Metrics, logger *slog.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":8000"
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    config,
		retriever: retriever,
		extractor: extractor,
		metrics:   m,
		logger:    logger,
	}
	s.echo = s.routes()
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				slog.String("id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP))
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowCredentials:                         true,
		UnsafeWildcardOriginWithAllowCredentials: true,
	}))

	var metricsHandler http.Handler
	if s.config.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})
	} else {
		metricsHandler = promhttp.Handler()
	}

	e.POST("/analyze_video", s.handleAnalyzeVideo)
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "OK") })
	e.GET("/metrics", echo.WrapHandler(metricsHandler))
	return e
}

// handleError logs the failure and answers with echo's default body.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	level := slog.LevelError
	if code < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	req := c.Request()
	s.logger.Log(req.Context(), level, "request failed",
		slog.String("id", c.Response().Header().Get(echo.HeaderXRequestID)),
		slog.Int("status", code),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Any("err", err))
	c.Echo().DefaultHTTPErrorHandler(err, c)
}

func (s *Server) handleAnalyzeVideo(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		s.metrics.ObserveRequest("invalid")
		return err
	}
	if !validLink(req.YouTubeLink) {
		s.metrics.ObserveRequest("invalid")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "youtube_link must be an absolute http(s) URL")
	}

	ctx := c.Request().Context()
	docs, err := s.retriever.Retrieve(ctx, req.YouTubeLink, s.config.Verbose)
	if err != nil {
		s.metrics.ObserveRequest("error")
		return err
	}

	concepts, err := s.extractor.Extract(ctx, docs, s.config.SampleSize, s.config.Verbose)
	if err != nil {
		s.metrics.ObserveRequest("error")
		return err
	}
	if concepts == nil {
		concepts = []models.ConceptMap{}
	}

	s.metrics.ObserveRequest("ok")
	return c.JSON(http.StatusOK, AnalyzeResponse{KeyConcepts: concepts})
}

func validLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	s.logger.Info("starting server", slog.String("addr", s.config.Addr))
	if err := s.echo.Start(s.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
