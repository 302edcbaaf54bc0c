// Package admin serves read-only session status over HTTP while the
// application runs.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/monkeywire/internal/monkey"
	"github.com/danmuck/monkeywire/internal/observability"
	"github.com/danmuck/monkeywire/internal/recording"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Source is what the admin server reports on.
type Source interface {
	State() monkey.State
	Recording() *recording.Recording
}

type Server struct {
	source      Source
	corsOrigins []string
	startedAt   time.Time
	log         zerolog.Logger
	router      *gin.Engine
}

func NewServer(source Source, corsOrigins []string) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		source:      source,
		corsOrigins: normalizeOrigins(corsOrigins),
		startedAt:   time.Now(),
		log:         observability.Logger("admin"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.observe())
	if len(s.corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.corsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	observability.RegisterMetrics()
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/v1/recording", s.recording)
	r.GET("/v1/recording/script", s.script)
	r.GET("/v1/recording/export", s.export)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
		"state":  string(s.source.State()),
	})
}

func (s *Server) recording(c *gin.Context) {
	snap := s.source.Recording().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"state":     string(s.source.State()),
		"recording": snap,
	})
}

func (s *Server) script(c *gin.Context) {
	c.String(http.StatusOK, s.source.Recording().Script())
}

// export returns the recording in the file form LoadScripts replays.
func (s *Server) export(c *gin.Context) {
	rec := s.source.Recording()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.ID()+".toml"))
	c.Header("Content-Type", "application/toml")
	c.Status(http.StatusOK)
	if err := rec.Encode(c.Writer); err != nil {
		s.log.Error().Err(err).Str("recording_id", rec.ID()).Msg("admin export failed")
	}
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("admin.Server.Serve listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
