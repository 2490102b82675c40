// Package server exposes the story engine over HTTP. Routes and response
// shapes match the web frontend: POST /api/game/start, POST /api/game/action
// and GET /api/game/themes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/tatianab/story-adventure/internal/models"
)

// Story is the engine surface the handlers need.
type Story interface {
	StartStory(ctx context.Context, theme string) (models.TurnResult, error)
	ContinueStory(ctx context.Context, id, action string) (models.TurnResult, error)
	Themes() []models.Theme
}

// Transcripts reads back journaled turns.
type Transcripts interface {
	Transcript(ctx context.Context, storyID string) ([]models.TurnRecord, error)
}

// Options configures a Server.
type Options struct {
	// Origins allowed by CORS. Empty means the local dev servers.
	Origins []string
	// RatePerMinute caps start/action calls per client. Zero disables the limit.
	RatePerMinute int
	// Transcripts serves /api/game/transcript/{id}. Nil disables the route.
	Transcripts Transcripts
	Logger      *slog.Logger
}

// Server serves the story API.
type Server struct {
	story       Story
	transcripts Transcripts
	origins     map[string]bool
	limiter     *RateLimiter
	logger      *slog.Logger
}

// DefaultOrigins are the local frontend dev servers.
var DefaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// New returns a server for story.
func New(story Story, opts Options) *Server {
	s := &Server{
		story:       story,
		transcripts: opts.Transcripts,
		origins:     make(map[string]bool),
		logger:      opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	origins := opts.Origins
	if len(origins) == 0 {
		origins = DefaultOrigins
	}
	for _, o := range origins {
		s.origins[o] = true
	}
	if opts.RatePerMinute > 0 {
		s.limiter = NewRateLimiter(opts.RatePerMinute, time.Minute)
	}
	return s
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /api/game/start", s.limit(s.handleStart))
	mux.HandleFunc("POST /api/game/action", s.limit(s.handleAction))
	mux.HandleFunc("GET /api/game/themes", s.handleThemes)
	mux.HandleFunc("GET /api/game/transcript/{id}", s.handleTranscript)
	return s.cors(mux)
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP API starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("HTTP API shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type startRequest struct {
	Theme string `json:"theme"`
}

type actionRequest struct {
	StoryID string `json:"story_id"`
	Action  string `json:"action"`
}

type transcriptEntry struct {
	models.TurnRecord
	Recorded string `json:"recorded"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "AI Story Game API",
		"status":  "running",
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req := startRequest{Theme: "adventure"}
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.story.StartStory(r.Context(), req.Theme)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.story.ContinueStory(r.Context(), req.StoryID, req.Action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	themes := s.story.Themes()
	if themes == nil {
		themes = []models.Theme{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"themes": themes})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "transcripts are disabled"})
		return
	}
	id := r.PathValue("id")
	records, err := s.transcripts.Transcript(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries := make([]transcriptEntry, len(records))
	for i, rec := range records {
		entries[i] = transcriptEntry{TurnRecord: rec, Recorded: humanize.Time(rec.CreatedAt)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"story_id": id, "turns": entries})
}

// writeError reports any engine failure as a 500 carrying its message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	// An empty body keeps the defaults.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(data)
}

// cors adds CORS headers for allowed frontend origins.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.origins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return RateLimitMiddleware(s.limiter, next)
}
