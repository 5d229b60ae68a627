// Package bridge exposes the installer to an embedded web view over local HTTP.
//
// A page posts the raw JSON array of identifiers to /api/v1/batches and reads
// the response as Server-Sent Events: "line" for streamed package manager
// output, "alert" for launch errors and a final "summary".
package bridge

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doeshing/installez/internal/application/install"
	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// SSE event names.
const (
	EventLine    = "line"
	EventAlert   = "alert"
	EventSummary = "summary"
)

// Options tunes the bridge.
type Options struct {
	ReportMalformed bool
	PackageManager  string
}

// Server is the HTTP UI shell adapter.
type Server struct {
	runner  ports.BatchRunner
	history ports.HistoryRepository
	logger  ports.Logger
	opts    Options

	// package managers hold a global lock; run one batch at a time
	batchMu sync.Mutex
	engine  *gin.Engine
}

// NewServer builds the router. history may be nil.
func NewServer(runner ports.BatchRunner, history ports.HistoryRepository, logger ports.Logger, opts Options) *Server {
	s := &Server{
		runner:  runner,
		history: history,
		logger:  logger,
		opts:    opts,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", s.health)
	api := router.Group("/api/v1")
	{
		api.POST("/batches", s.runBatch)
		api.GET("/batches", s.listBatches)
	}
	s.engine = router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("bridge listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), domain.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"package_manager": s.opts.PackageManager,
		"history":         s.history != nil,
	})
}

func (s *Server) runBatch(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := install.DecodeRequest(body)
	if err != nil {
		s.logger.Warn("dropping malformed install request", map[string]interface{}{"error": err.Error()})
		if s.opts.ReportMalformed {
			c.JSON(http.StatusBadRequest, gin.H{"error": install.MalformedStatus(err)})
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("X-Batch-Id", req.ID)
	c.Status(http.StatusOK)

	shell := newSSEShell(c)
	if _, err := s.runner.Process(c.Request.Context(), req, shell); err != nil {
		s.logger.Error("batch failed", err, map[string]interface{}{"batch": req.ID})
		shell.Alert(err.Error())
	}
}

func (s *Server) listBatches(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is disabled"})
		return
	}
	limit := domain.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	records, err := s.history.Batches(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}
	if records == nil {
		records = []domain.BatchRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"batches": records})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
