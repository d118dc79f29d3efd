package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"social-go/internal/metrics"
)

// LogMiddleware writes one access log line per request and records its
// latency under the matched mux route template.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			metrics.RecordHTTPRequest(r.Method, routeTemplate(r), m.Code, m.Duration)

			fields := logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   m.Code,
				"bytes":    m.Written,
				"duration": m.Duration,
				"remote":   r.RemoteAddr,
			}

			entry := logger.WithFields(fields)
			switch {
			case m.Code >= 500:
				entry.Error("HTTP Request")
			case m.Code >= 400:
				entry.Warn("HTTP Request")
			default:
				entry.Info("HTTP Request")
			}
		})
	}
}

// LogWebSocketConnect logs a message when a WebSocket client connects.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, path string, userID uint) {
	logger.WithFields(logrus.Fields{
		"remote":  remoteAddr,
		"path":    path,
		"user_id": userID,
	}).Info("WebSocket connected")
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
