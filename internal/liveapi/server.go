package liveapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"captioner/internal/journal"
	"captioner/internal/live"
	"captioner/internal/logging"
	"captioner/internal/services"
)

// Controller is the live controller surface used by the server.
type Controller interface {
	Snapshot() live.Snapshot
	Start(ctx context.Context) error
	Stop() (live.StopResult, error)
}

// SessionLister reads the session journal.
type SessionLister interface {
	ListSessions(ctx context.Context, limit int) ([]journal.Session, error)
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	SessionID string `json:"session_id,omitempty"`
	State     string `json:"state"`
	Language  string `json:"language"`
	Text      string `json:"text"`
}

// SessionResponse is one entry of GET /api/sessions.
type SessionResponse struct {
	ID         string     `json:"id"`
	Language   string     `json:"language"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	EndReason  string     `json:"end_reason,omitempty"`
	FinalCount int        `json:"final_count"`
	Transcript string     `json:"transcript"`
}

// Server serves the live API.
type Server struct {
	bind     string
	ctrl     Controller
	sessions SessionLister
	logger   *slog.Logger
	hub      *hub
	engine   *gin.Engine

	baseCtx  context.Context
	listener net.Listener
	server   *http.Server
}

// New builds the router. sessions may be nil.
func New(bind string, ctrl Controller, sessions SessionLister, logger *slog.Logger) (*Server, error) {
	if ctrl == nil {
		return nil, errors.New("liveapi requires a controller")
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		bind:     strings.TrimSpace(bind),
		ctrl:     ctrl,
		sessions: sessions,
		logger:   logging.NewComponentLogger(logger, "api"),
		hub:      newHub(),
		baseCtx:  context.Background(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	api := engine.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/transcript", s.handleTranscript)
	api.GET("/events", s.handleEvents)
	api.GET("/sessions", s.handleSessions)
	api.POST("/live/start", s.handleStart)
	api.POST("/live/stop", s.handleStop)
	s.engine = engine

	s.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// OnTextUpdated implements live.Observer.
func (s *Server) OnTextUpdated(text string) {
	s.hub.publish(text)
}

// Start listens on the bind address until ctx ends or Stop is called.
// Sessions started over HTTP inherit ctx.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return services.Wrap(services.ErrConfiguration, "api", "listen", "bind address required", nil)
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.baseCtx = ctx

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), requestID))
		c.Next()
		logging.WithContext(c.Request.Context(), s.logger).Debug("api request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	snap := s.ctrl.Snapshot()
	c.JSON(http.StatusOK, StatusResponse{
		SessionID: snap.SessionID,
		State:     snap.State.String(),
		Language:  string(snap.Language),
		Text:      snap.Text,
	})
}

func (s *Server) handleTranscript(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"text": s.ctrl.Snapshot().Text})
}

func (s *Server) handleEvents(c *gin.Context) {
	updates, unsubscribe := s.hub.subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("text", s.ctrl.Snapshot().Text)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case text := <-updates:
			c.SSEvent("text", text)
			return true
		}
	})
}

func (s *Server) handleSessions(c *gin.Context) {
	if s.sessions == nil {
		c.JSON(http.StatusOK, gin.H{"sessions": []SessionResponse{}})
		return
	}
	limit := 20
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	list, err := s.sessions.ListSessions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]SessionResponse, 0, len(list))
	for _, sess := range list {
		resp := SessionResponse{
			ID:         sess.ID,
			Language:   sess.Language,
			StartedAt:  sess.StartedAt,
			EndReason:  sess.EndReason,
			FinalCount: sess.FinalCount,
			Transcript: sess.Transcript,
		}
		if !sess.Running() {
			ended := sess.EndedAt
			resp.EndedAt = &ended
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (s *Server) handleStart(c *gin.Context) {
	if err := s.ctrl.Start(s.baseCtx); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, live.ErrAlreadyRunning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	s.handleStatus(c)
}

func (s *Server) handleStop(c *gin.Context) {
	result, err := s.ctrl.Stop()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, live.ErrNotRunning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": result.SessionID, "timed_out": result.TimedOut})
}
