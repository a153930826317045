// Package server exposes stored stories and composed frames over HTTP.
//
// The API is read-only JSON:
//
//	GET /healthz                         liveness probe
//	GET /stories                         story summaries
//	GET /stories/{id}                    full story definition
//	GET /stories/{id}/frames/{index}     composed frame for one step
//
// Frame requests accept ?w= and ?h= query parameters for the viewport in
// device-independent units; omitted dimensions fall back to the server's
// configured defaults. Out-of-range step indices are clamped rather than
// rejected, matching how the compose layer treats them.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/storyline/pkg/frame"
	"github.com/matzehuels/storyline/pkg/geo"
	"github.com/matzehuels/storyline/pkg/store"
)

// Server serves stories and frames.
type Server struct {
	store    store.Store
	composer *frame.CachedComposer
	logger   *log.Logger
	viewport geo.Size
}

// New creates a server. The default viewport applies when a frame request
// omits ?w= or ?h=.
func New(st store.Store, composer *frame.CachedComposer, viewport geo.Size, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: st, composer: composer, logger: logger, viewport: viewport}
}

// Handler builds the chi route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/stories", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleStory)
		r.Get("/{id}/frames/{index}", s.handleFrame)
	})
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list stories", "err", err)
		writeError(w, http.StatusInternalServerError, "list stories")
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.fetch(w, r)
	if !ok {
		return
	}
	st, err := rec.Story()
	if err != nil {
		s.logger.Error("decode story", "id", rec.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "decode story")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.fetch(w, r)
	if !ok {
		return
	}
	st, err := rec.Story()
	if err != nil {
		s.logger.Error("decode story", "id", rec.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "decode story")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	viewport := s.viewport
	if w := queryFloat(r, "w"); w > 0 {
		viewport.Width = w
	}
	if h := queryFloat(r, "h"); h > 0 {
		viewport.Height = h
	}

	f := s.composer.Compose(r.Context(), st, index, viewport)
	writeJSON(w, http.StatusOK, f)
}

// fetch loads the record named by the {id} URL parameter, writing the
// error response itself when the lookup fails.
func (s *Server) fetch(w http.ResponseWriter, r *http.Request) (*store.Record, bool) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "story not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("get story", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "get story")
		return nil, false
	}
	return rec, true
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started).Round(time.Millisecond))
	})
}

func queryFloat(r *http.Request, key string) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
