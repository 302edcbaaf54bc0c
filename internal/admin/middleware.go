package admin

import (
	"time"

	"github.com/danmuck/monkeywire/internal/observability"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no registered route, so scanners
// cannot grow the metric label set.
const unmatchedRoute = "unmatched"

func routeLabel(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return unmatchedRoute
}

// observe logs and counts each admin request against the session it was
// served for.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := routeLabel(c)
		state := string(s.source.State())
		elapsed := time.Since(start)
		observability.RecordHTTPRequest(c.Request.Method, route, state, status, elapsed)

		event := s.log.Debug()
		switch {
		case status >= 500:
			event = s.log.Error()
		case status >= 400:
			event = s.log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("state", state).
			Str("recording_id", s.source.Recording().ID()).
			Dur("duration", elapsed).
			Msg("admin request")
	}
}
