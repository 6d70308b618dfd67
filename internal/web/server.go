// Package web hosts the keep-alive endpoint and the small ingest API that
// external presence collectors report device signals through.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/axz356574-a11y/Confession/internal/activity"
)

type Server struct {
	store  *activity.Store
	router *gin.Engine
	port   int
	logger *zap.Logger
}

// presenceRequest is one device-presence signal. Device is free-form
// (mobile/desktop/web by convention); Timestamp defaults to now.
type presenceRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	Device    string `json:"device" binding:"required"`
	Timestamp int64  `json:"timestamp"`
}

func NewServer(store *activity.Store, port int, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		store:  store,
		router: router,
		port:   port,
		logger: logger,
	}

	router.GET("/", s.handleHome)
	router.POST("/events/presence", s.handlePresence)

	return s
}

func (s *Server) handleHome(c *gin.Context) {
	c.String(http.StatusOK, "Bot Running!")
}

func (s *Server) handlePresence(c *gin.Context) {
	var req presenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ts := req.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}
	s.store.RecordDevicePresence(req.UserID, req.Device, ts)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Keep-alive server shutdown error", zap.Error(err))
		}
	}()

	s.logger.Info("Keep-alive server listening", zap.Int("port", s.port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
