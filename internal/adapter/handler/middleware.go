package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/novalo/storefront/internal/core/service"
)

// guardExempt lists prefixes the navigation guard never touches. API calls
// and static assets are not page navigations.
var guardExempt = []string{
	"/api/",
	"/assets/",
	"/health",
	"/favicon.ico",
}

// Guard applies the route-access decision to page navigations. It reads the
// credential cookie, classifies the requested path, and either lets the
// page through or redirects to /login or /.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range guardExempt {
			if strings.HasPrefix(r.URL.Path, p) {
				next.ServeHTTP(w, r)
				return
			}
		}

		hasToken := sessionToken(r) != ""
		switch service.EvaluateRoute(hasToken, r.URL.Path) {
		case service.RouteRedirectLogin:
			http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
		case service.RouteRedirectHome:
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLog tags every request with an id and logs method, path, status
// and duration.
func RequestLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		log.Info("request",
			"request_id", uuid.New().String(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
