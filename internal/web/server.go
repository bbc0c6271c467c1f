// Package web serves the JSON API used by the portfolio site and its admin UI.
package web

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/maaackz/folio/internal/auth"
	"github.com/maaackz/folio/internal/config"
	"github.com/maaackz/folio/internal/events"
	"github.com/maaackz/folio/internal/ops"
)

// NewServer creates and configures the HTTP server for the API.
func NewServer(st *ops.Store, authn *auth.Authenticator, hub *events.Hub, cfg *config.Config, log *logrus.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewHandler(st, authn, hub, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler builds the API routes wrapped in the standard middleware.
func NewHandler(st *ops.Store, authn *auth.Authenticator, hub *events.Hub, cfg *config.Config, log *logrus.Logger) http.Handler {
	h := &Handlers{
		store: st,
		auth:  authn,
		hub:   hub,
		log:   log,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /api/health", h.HandleHealth)

	mux.HandleFunc("GET /api/sections", h.HandleListSections)
	mux.HandleFunc("GET /api/sections/{id}", h.HandleGetSection)
	mux.HandleFunc("POST /api/sections/{id}", h.HandleUpsertSection)
	mux.HandleFunc("PUT /api/sections/{id}", h.HandleUpsertSection)
	mux.HandleFunc("DELETE /api/sections/{id}", h.HandleDeleteSection)

	mux.HandleFunc("GET /api/projects", h.HandleListProjects)
	mux.HandleFunc("GET /api/projects/counts", h.HandleCategoryCounts)
	mux.HandleFunc("GET /api/projects/category/{category}", h.HandleListProjects)
	mux.HandleFunc("POST /api/projects", h.HandleCreateProject)
	mux.HandleFunc("GET /api/projects/{id}", h.HandleGetProject)
	mux.HandleFunc("PUT /api/projects/{id}", h.HandleUpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.HandleDeleteProject)
	mux.HandleFunc("POST /api/projects/{id}/case-studies", h.HandleAddCaseStudy)
	mux.HandleFunc("PUT /api/projects/{id}/case-studies/{index}", h.HandleUpdateCaseStudy)
	mux.HandleFunc("DELETE /api/projects/{id}/case-studies/{index}", h.HandleDeleteCaseStudy)
	mux.HandleFunc("POST /api/projects/{id}/case-studies/{index}/move", h.HandleMoveCaseStudy)

	mux.HandleFunc("GET /api/pages/{category}", h.HandleListPages)
	mux.HandleFunc("GET /api/pages/{category}/{slug}", h.HandleGetPage)
	mux.HandleFunc("POST /api/pages/{category}/{slug}", h.HandleSavePage)
	mux.HandleFunc("DELETE /api/pages/{category}/{slug}", h.HandleDeletePage)

	mux.HandleFunc("GET /api/structure", h.HandleGetStructure)
	mux.HandleFunc("POST /api/structure", h.HandleSaveStructure)
	mux.HandleFunc("POST /api/structure/sweep", h.HandleSweepStructure)
	mux.HandleFunc("GET /api/structure/{slug}", h.HandleGetCategory)

	mux.HandleFunc("GET /api/tags", h.HandleGetTags)
	mux.HandleFunc("POST /api/tags", h.HandleSetTags)
	mux.HandleFunc("GET /api/availability", h.HandleGetAvailability)
	mux.HandleFunc("POST /api/availability", h.HandleSetAvailability)

	mux.HandleFunc("POST /api/login", h.HandleLogin)
	mux.HandleFunc("GET /api/login", h.HandleSession)
	mux.HandleFunc("DELETE /api/login", h.HandleLogout)

	if hub != nil {
		mux.Handle("GET /api/events", events.NewHandler(hub, cfg.CORSOrigin, log))
	}

	var handler http.Handler = mux
	handler = h.session(handler)
	handler = cors(cfg.CORSOrigin, handler)
	handler = securityHeaders(handler)
	handler = requestLogger(log, handler)
	return handler
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// cors allows a single browser origin, with credentials, to call the API.
// An empty origin disables CORS headers entirely.
func cors(origin string, next http.Handler) http.Handler {
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqOrigin := r.Header.Get("Origin"); reqOrigin != "" && (origin == "*" || reqOrigin == origin) {
			w.Header().Set("Access-Control-Allow-Origin", reqOrigin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestLogger tags each request with a ULID and logs it once it completes.
func requestLogger(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := ulid.Make().String()
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		})
		switch {
		case rec.status >= 500:
			entry.Error("request failed")
		case rec.status >= 400:
			entry.Info("request rejected")
		default:
			entry.Debug("request served")
		}
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, hub *events.Hub, log *logrus.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.WithField("addr", srv.Addr).Info("folio API listening")

	if strings.HasPrefix(srv.Addr, ":") || strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "[::]") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutting down")
		if hub != nil {
			hub.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
