// Package web serves generated calendars over HTTP: a health endpoint plus
// one document per user, optionally gated behind a per-user bearer token.
package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"ttcal/internal/config"
	appLog "ttcal/internal/log"
	"ttcal/internal/store"
)

// Server exposes the artifact store over HTTP.
type Server struct {
	cfg *config.Config
	st  *store.Store
	mux *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, st *store.Store) *Server {
	s := &Server{
		cfg: cfg,
		st:  st,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/users/", s.handleCalendar)
}

// handleHealth is always unauthenticated.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleCalendar serves GET /users/<user>/timetable.ics.
//
// If a token is configured for the user, the request must present it either
// as "Authorization: Bearer <token>" or as a ?token= query parameter
// (subscription clients cannot always set headers). Users without a
// configured token are served openly.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := calendarUser(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if expected := s.cfg.Tokens[user]; expected != "" {
		if !secureCompare(requestToken(r), expected) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="ttcal"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	doc, err := os.ReadFile(s.st.CalendarPath(user))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		appLog.Error("failed to read calendar", err, "user", user)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// calendarUser extracts the username from /users/<user>/timetable.ics,
// rejecting anything that could escape the store root.
func calendarUser(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/users/")
	if !ok {
		return "", false
	}
	user, ok := strings.CutSuffix(rest, "/timetable.ics")
	if !ok || user == "" {
		return "", false
	}
	if strings.ContainsAny(user, "/\\") || strings.Contains(user, "..") {
		return "", false
	}
	return user, true
}

// requestToken pulls the bearer token from the Authorization header or the
// token query parameter.
func requestToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	return r.URL.Query().Get("token")
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves HTTP on cfg.Listen until ctx is canceled, then shuts
// down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, st *store.Store) error {
	s := NewServer(cfg, st)
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
