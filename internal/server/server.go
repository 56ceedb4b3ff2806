// Package server exposes a wizard session over a JSON HTTP API.
//
// One [page.Page] backs the server for its whole lifetime, so every client
// sees the same step progression. Uploaded files are stored in the upload
// directory while they are the step's selection, so a rejected step can be
// resubmitted; a replaced selection is removed at once and the rest when the
// server closes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"csvwizard/internal/config"
	"csvwizard/internal/page"
)

// Server handles HTTP requests for one wizard session.
type Server struct {
	cfg       *config.Config
	page      *page.Page
	router    *gin.Engine
	logger    *zap.Logger
	uploadDir string
	ownsDir   bool

	mu     sync.Mutex
	stored map[string]string
	closed bool
}

// New creates a server around p. When cfg.Server.UploadDir is empty a
// temporary directory is created and [Server.Close] removes it.
func New(cfg *config.Config, p *page.Page, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	uploadDir := cfg.Server.UploadDir
	ownsDir := false
	if uploadDir == "" {
		dir, err := os.MkdirTemp("", "csvwizard-uploads-")
		if err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
		uploadDir = dir
		ownsDir = true
	} else if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		page:      p,
		router:    gin.New(),
		logger:    logger,
		uploadDir: uploadDir,
		ownsDir:   ownsDir,
		stored:    make(map[string]string),
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// UploadDir returns the directory uploaded files are stored in.
func (s *Server) UploadDir() string {
	return s.uploadDir
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.requestID, s.accessLog, cors)

	s.router.GET("/health", s.health)

	api := s.router.Group("/api/v1")
	{
		api.GET("/steps", s.listSteps)
		api.POST("/steps/:id/upload", s.uploadStep)
		api.GET("/steps/:id/columns", s.stepColumns)
		api.GET("/errors", s.listErrors)
		api.DELETE("/errors", s.dismissErrors)
		api.POST("/mapping/preview", s.previewMapping)
		api.POST("/consolidate", s.consolidate)
		api.GET("/consolidate", s.consolidatedResult)
		api.GET("/consolidate/download", s.downloadConsolidated)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Server listening", zap.String("addr", addr), zap.String("upload_dir", s.uploadDir))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	if closeErr := s.Close(); closeErr != nil {
		s.logger.Warn("Failed to clean up uploads", zap.Error(closeErr))
	}
	return err
}

// Close removes the stored uploads, and the upload directory itself when
// the server created it. Start calls Close on shutdown; callers serving
// [Server.Handler] themselves call it when done. Close is idempotent.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.ownsDir {
		if err := os.RemoveAll(s.uploadDir); err != nil {
			return fmt.Errorf("failed to remove upload directory: %w", err)
		}
		s.logger.Debug("Removed upload directory", zap.String("dir", s.uploadDir))
		return nil
	}
	for id, path := range s.stored {
		s.removeUpload(path)
		delete(s.stored, id)
	}
	return nil
}

// keepUpload records which file is the step's selection after an upload
// attempt. path was stored for this attempt; current is the uploader's
// selection afterwards. A path that did not become the selection, and a
// selection it replaced, are removed.
func (s *Server) keepUpload(id, path, current string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || current != path {
		s.removeUpload(path)
		return
	}
	if prev := s.stored[id]; prev != "" && prev != path {
		s.removeUpload(prev)
	}
	s.stored[id] = path
}

func (s *Server) removeUpload(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to remove upload", zap.String("file", path), zap.Error(err))
	}
}

func cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	c.Next()
}

const requestIDKey = "request_id"

func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header("X-Request-ID", id)
	c.Next()
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("Request handled",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)),
	)
}
