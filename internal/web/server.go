package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dpetrov/imgvault/internal/assist"
	"github.com/dpetrov/imgvault/internal/auth"
	"github.com/dpetrov/imgvault/internal/service"
)

type Server struct {
	images    *service.ImageService
	authn     *auth.Authenticator
	sessions  *auth.SessionManager
	responder assist.Responder
	templates embed.FS
	mux       *http.ServeMux
	logger    *slog.Logger
	maxUpload int64
}

func NewServer(
	images *service.ImageService,
	authn *auth.Authenticator,
	sessions *auth.SessionManager,
	responder assist.Responder,
	tmpl embed.FS,
	maxUpload int64,
	logger *slog.Logger,
) *Server {
	s := &Server{
		images:    images,
		authn:     authn,
		sessions:  sessions,
		responder: responder,
		templates: tmpl,
		mux:       http.NewServeMux(),
		logger:    logger,
		maxUpload: maxUpload,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /login", s.handleLoginPage)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("GET /logout", s.requireAuth(s.handleLogout))
	s.mux.HandleFunc("GET /reset_device/{id}", s.handleResetDevice)
	s.mux.HandleFunc("GET /create_users", s.handleBootstrap)

	s.mux.HandleFunc("GET /{$}", s.requireAuth(s.handleIndex))
	s.mux.HandleFunc("POST /upload", s.requireAuth(s.handleUpload))
	s.mux.HandleFunc("GET /image/{id}", s.requireAuth(s.handleGetImage))
	s.mux.HandleFunc("POST /delete/{id}", s.requireAuth(s.handleDelete))
	s.mux.HandleFunc("POST /ask", s.requireAuth(s.handleAsk))
}

type ctxKey int

const accountIDKey ctxKey = 0

// requireAuth resolves the session cookie into a request-scoped account id.
// Unauthenticated requests are sent to the login page.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.GetSession(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), accountIDKey, sess.AccountID)
		next(w, r.WithContext(ctx))
	}
}

// accountID returns the authenticated account for the request. Only valid
// inside handlers wrapped by requireAuth.
func accountID(r *http.Request) int64 {
	id, _ := r.Context().Value(accountIDKey).(int64)
	return id
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// renderPage parses and executes a full-page template set with the given
// status code.
func (s *Server) renderPage(w http.ResponseWriter, status int, data any, files ...string) error {
	tmpl, err := template.New("").ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.ExecuteTemplate(w, "base", data)
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
