package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/store"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool      `json:"ok"`
	DB      string    `json:"db"`
	Version string    `json:"version"`
	Time    time.Time `json:"time"`
}

// Server provides the HTTP API for todo.
type Server struct {
	service *Service
	addr    string
	router  *gin.Engine
	server  *http.Server
	log     *slog.Logger
	origins []string
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithCORSOrigins sets the browser origins allowed to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, addr string, opts ...Option) *Server {
	s := &Server{
		service: service,
		addr:    addr,
		log:     slog.Default(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), requestLogger(s.log), cors(s.origins))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/tasks/health", s.handleTasksHealth)
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.DELETE("/tasks", s.handleDeleteAll)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id/complete", s.handleCompleteTask)
		api.GET("/audit", s.handleAuditLog)
	}

	router.NoRoute(func(c *gin.Context) {
		s.writeError(c, http.StatusNotFound, "Resource not found", nil)
	})
	router.NoMethod(func(c *gin.Context) {
		s.writeError(c, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	s.router = router
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.log.Info("starting task service", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: s.version,
		Time:    time.Now().UTC(),
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.service.Health(ctx); err != nil {
		s.log.Error("health check failed", "error", err)
		resp.OK = false
		resp.DB = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

func (s *Server) handleTasksHealth(c *gin.Context) {
	c.String(http.StatusOK, "Task API is running")
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.service.RecentTasks(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req models.NewTask
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "Malformed JSON request", nil)
		return
	}

	task, err := s.service.CreateTask(c.Request.Context(), req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			s.writeError(c, http.StatusBadRequest, verr.First(), verr.Fields)
			return
		}
		if errors.Is(err, store.ErrDuplicateID) {
			s.writeError(c, http.StatusConflict, "Task already exists", nil)
			return
		}
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id := c.Param("id")

	task, err := s.service.GetTask(c.Request.Context(), id)
	switch {
	case errors.Is(err, ErrTaskNotFound):
		s.writeError(c, http.StatusNotFound, "Task not found with id: "+id, nil)
		return
	case err != nil:
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (s *Server) handleAuditLog(c *gin.Context) {
	limit := DefaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(c, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	entries, err := s.service.AuditLog(c.Request.Context(), limit)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	id := c.Param("id")

	task, err := s.service.CompleteTask(c.Request.Context(), id)
	switch {
	case errors.Is(err, ErrTaskNotFound):
		s.writeError(c, http.StatusNotFound, "Task not found with id: "+id, nil)
		return
	case errors.Is(err, ErrTaskAlreadyCompleted):
		s.writeError(c, http.StatusConflict, "Task already completed: "+id, nil)
		return
	case err != nil:
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteAll(c *gin.Context) {
	if err := s.service.DeleteAllTasks(c.Request.Context()); err != nil {
		s.internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	s.writeError(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
}

func (s *Server) writeError(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Status:    status,
		Message:   message,
		Errors:    fields,
		Path:      c.Request.URL.Path,
		Timestamp: time.Now().UTC(),
	})
}
