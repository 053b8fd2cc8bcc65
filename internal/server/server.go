// Package server exposes the directory core over HTTP for the presentation
// layer. Rendering, playback and input debouncing all live client-side; the
// handlers here only translate requests into core calls.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/voyagen/telehaven/internal/catalog"
	"github.com/voyagen/telehaven/internal/filter"
	"github.com/voyagen/telehaven/internal/metrics"
	"github.com/voyagen/telehaven/internal/models"
	"github.com/voyagen/telehaven/internal/notify"
	"github.com/voyagen/telehaven/internal/prefs"
	"github.com/voyagen/telehaven/internal/schedule"
	"github.com/voyagen/telehaven/internal/tracker"
)

// Server holds dependencies for the HTTP API.
type Server struct {
	catalog *catalog.Catalog
	tracker *tracker.Tracker
	prefs   *prefs.Store
	watcher *notify.Watcher
	log     zerolog.Logger
	router  chi.Router
	port    string
}

// New creates a Server and registers routes. watcher may be nil when the
// notification poll is not running.
func New(cat *catalog.Catalog, tr *tracker.Tracker, pf *prefs.Store, w *notify.Watcher, port string, logger zerolog.Logger) *Server {
	s := &Server{
		catalog: cat,
		tracker: tr,
		prefs:   pf,
		watcher: w,
		log:     logger,
		port:    port,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/api/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Channels
	r.Get("/api/channels", s.handleListChannels)
	r.Get("/api/channels/{id}", s.handleGetChannel)
	r.Get("/api/channels/{id}/now", s.handleCurrentProgram)
	r.Post("/api/channels/{id}/watch", s.handleWatch)
	r.Post("/api/channels/{id}/favorite", s.handleToggleFavorite)
	r.Post("/api/catalog/refresh", s.handleRefreshCatalog)

	// User state
	r.Get("/api/favorites", s.handleListFavorites)
	r.Get("/api/recent", s.handleListRecent)

	// Preferences
	r.Get("/api/preferences", s.handleGetPreferences)
	r.Put("/api/preferences/{key}", s.handleSetPreference)
	r.Post("/api/preferences/filters", s.handleAddSavedFilter)
	r.Delete("/api/preferences/filters/{id}", s.handleRemoveSavedFilter)

	// Filter option sets
	r.Get("/api/languages", s.handleListLanguages)
	r.Get("/api/categories", s.handleListCategories)

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.port
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("server shutdown")
		}
	}()

	s.log.Info().Str("addr", addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	crit := filter.Criteria{
		Search:   q.Get("search"),
		Language: q.Get("language"),
		Category: q.Get("category"),
	}
	metrics.FilterQueries.Inc()
	channels := filter.Apply(s.catalog.All(), crit)
	if channels == nil {
		channels = []models.Channel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// nowPlayingResponse reports the active program of a channel. Program is
// null when no slot covers the current time (before the first listed slot).
type nowPlayingResponse struct {
	ChannelID models.ChannelID    `json:"channelId"`
	Program   *models.ProgramSlot `json:"program"`
}

func (s *Server) handleCurrentProgram(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.lookup(w, r)
	if !ok {
		return
	}
	// Resolved fresh on every query; "now" moves between calls.
	slot := schedule.CurrentProgram(ch.Schedule, schedule.MinutesSinceMidnight(time.Now()))
	writeJSON(w, http.StatusOK, nowPlayingResponse{ChannelID: ch.ID, Program: slot})
}

// watchResponse gives the playback layer what it needs to start the stream.
type watchResponse struct {
	Channel models.Channel      `json:"channel"`
	Program *models.ProgramSlot `json:"program"`
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.tracker.RecordWatched(r.Context(), ch.ID)
	if s.watcher != nil {
		s.watcher.SetCurrent(ch.ID)
	}
	slot := schedule.CurrentProgram(ch.Schedule, schedule.MinutesSinceMidnight(time.Now()))
	writeJSON(w, http.StatusOK, watchResponse{Channel: ch, Program: slot})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.lookup(w, r)
	if !ok {
		return
	}
	fav := s.tracker.ToggleFavorite(r.Context(), ch.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": fav})
}

func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	n, err := s.catalog.Load(r.Context())
	if err != nil {
		metrics.CatalogLoadErrors.Inc()
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	metrics.CatalogLoads.Inc()
	writeJSON(w, http.StatusOK, map[string]int{"channels": n})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, _ *http.Request) {
	// Stale ids (channels gone from the feed) drop out silently here.
	writeJSON(w, http.StatusOK, s.catalog.Resolve(s.tracker.Favorites()))
}

func (s *Server) handleListRecent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Resolve(s.tracker.Recent()))
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.prefs.Preferences())
}

func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}
	if err := s.prefs.SetJSON(r.Context(), key, raw); err != nil {
		if errors.Is(err, prefs.ErrUnknownKey) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.prefs.Preferences())
}

func (s *Server) handleAddSavedFilter(w http.ResponseWriter, r *http.Request) {
	var f models.SavedFilter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if f.Name == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}
	saved := s.prefs.AddSavedFilter(r.Context(), f)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleRemoveSavedFilter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.prefs.RemoveSavedFilter(r.Context(), id) {
		writeErr(w, http.StatusNotFound, fmt.Errorf("saved filter %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Languages())
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories())
}

// lookup resolves the {id} path param to a channel, writing a 404 when it is
// not in the catalog.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (models.Channel, bool) {
	id := models.ChannelID(chi.URLParam(r, "id"))
	ch, ok := s.catalog.Lookup(id)
	if !ok {
		writeErr(w, http.StatusNotFound, fmt.Errorf("channel %s not found", id))
	}
	return ch, ok
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
