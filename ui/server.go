package ui

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"dataportal/app"
	"dataportal/internal"
	"dataportal/internal/metrics"
	"dataportal/ui/services"

	"github.com/gin-gonic/gin"
)

//go:embed templates static
var embeddedFiles embed.FS

// Config holds UI server configuration
type Config struct {
	Addr           string
	CookieName     string
	SecureCookie   bool
	MaxUploadBytes int64
	DefaultRows    int // head/tail rows when the request does not say
}

// Server is the browser UI and JSON API
type Server struct {
	router   *gin.Engine
	service  *app.ExplorerService
	renderer *services.RenderService
	cfg      Config
	logger   *internal.Logger
	httpSrv  *http.Server
}

// NewServer creates the server and registers its routes
func NewServer(service *app.ExplorerService, cfg Config, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.DefaultRows < 1 {
		cfg.DefaultRows = 1
	}

	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	renderer, err := services.NewRenderService(templatesFS)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   gin.New(),
		service:  service,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
	s.router.MaxMultipartMemory = 8 << 20

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // large uploads
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))
	s.router.Use(metrics.GinMiddleware())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	withSession := s.router.Group("/", sessionMiddleware(s.service, s.cfg.CookieName, s.cfg.SecureCookie, s.logger))

	// Page
	withSession.GET("/", s.handleIndex)
	withSession.POST("/upload", s.handleUpload)
	withSession.POST("/session/reset", s.handleReset)

	// JSON API; HTMX requests get HTML fragments instead
	api := withSession.Group("/api")
	api.GET("/overview", s.handleOverview)
	api.POST("/count", s.handleCount)
	api.POST("/group", s.handleGroup)
	api.POST("/chart", s.handleChart)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	serveErrCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErrCh <- fmt.Errorf("failed to listen and serve: %w", err)
		}
	}()

	s.logger.Info("[Server] Data portal listening on http://%s", s.cfg.Addr)

	select {
	case <-ctx.Done():
		s.logger.Info("[Server] stopping: %v", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		s.logger.Info("[Server] shutdown complete")
		return nil
	case err := <-serveErrCh:
		return err
	}
}
