package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/poiesic/warroom/analysis"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/storage"
)

// Server exposes the analysis pipeline and briefing history over HTTP.
//
// POST /api/v1/analyze streams pipeline progress as server-sent events;
// the briefing routes serve persisted runs.
type Server struct {
	router    *chi.Mux
	runner    *analysis.Runner
	briefings storage.BriefingRepository
	port      int
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithPort sets the listen port.
func WithPort(port int) Option {
	return func(s *Server) error {
		s.port = port
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// NewServer creates the HTTP server.
func NewServer(runner *analysis.Runner, briefings storage.BriefingRepository, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, ErrRunnerRequired
	}
	if briefings == nil {
		return nil, ErrBriefingRepositoryRequired
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		runner:    runner,
		briefings: briefings,
		port:      8080,
		logger:    slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	router.Get("/health", s.health)
	router.Post("/api/v1/analyze", s.analyze)
	router.Get("/api/v1/briefings", s.listBriefings)
	router.Get("/api/v1/briefings/{id}", s.getBriefing)

	return s, nil
}

// Handler returns the underlying router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// AnalyzeRequest is the POST /api/v1/analyze payload. Documents carry
// already-extracted text; file parsing happens upstream of this service.
type AnalyzeRequest struct {
	Series    string            `json:"series"`
	Documents []DocumentPayload `json:"documents"`
}

// DocumentPayload is one input document.
type DocumentPayload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid JSON: %v"}`, err), http.StatusBadRequest)
		return
	}
	if req.Series == "" {
		http.Error(w, `{"error":"series is required"}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	docs := make([]core.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = core.Document{
			Name:    d.Name,
			Content: d.Content,
			Type:    "text",
			Size:    int64(len(d.Content)),
		}
	}

	// The run outlives a client disconnect: events stop being delivered
	// but in-flight phases and indexing complete against the store.
	ctx := context.WithoutCancel(r.Context())
	sink := NewSSESink(w, flusher)
	if _, err := s.runner.Run(ctx, analysis.Request{Series: req.Series, Documents: docs}, sink); err != nil {
		// Already reported on the stream as an error event.
		s.logger.Warn("analysis run aborted", "err", err)
	}
}

// BriefingResponse is the JSON shape of a persisted briefing.
type BriefingResponse struct {
	ID               string                              `json:"id"`
	Series           string                              `json:"series"`
	Title            string                              `json:"title"`
	ExecutiveSummary string                              `json:"executive_summary"`
	DocumentCount    int                                 `json:"document_count"`
	TotalWords       int                                 `json:"total_words"`
	CreatedAt        time.Time                           `json:"created_at"`
	Phases           map[core.PhaseName]core.PhaseStatus `json:"phases"`
	Materiality      *core.MaterialityResult             `json:"materiality,omitempty"`
	Questions        *core.QuestionsResult               `json:"questions,omitempty"`
	Trends           *core.TrendsResult                  `json:"trends,omitempty"`
}

func toBriefingResponse(b *core.Briefing, includeResults bool) BriefingResponse {
	resp := BriefingResponse{
		ID:               b.Id.String(),
		Series:           b.Series,
		Title:            b.Title,
		ExecutiveSummary: b.ExecutiveSummary,
		DocumentCount:    b.DocumentCount,
		TotalWords:       b.TotalWords,
		CreatedAt:        b.CreatedAt,
		Phases:           b.Phases,
	}
	if includeResults {
		resp.Materiality = b.Materiality
		resp.Questions = b.Questions
		resp.Trends = b.Trends
	}
	return resp
}

func (s *Server) listBriefings(w http.ResponseWriter, r *http.Request) {
	series := r.URL.Query().Get("series")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	briefings, err := s.briefings.ListBriefings(r.Context(), series, limit)
	if err != nil {
		s.logger.Error("listing briefings failed", "err", err)
		http.Error(w, `{"error":"listing briefings failed"}`, http.StatusInternalServerError)
		return
	}

	// Listing omits the phase results; fetch by ID for the full record.
	out := make([]BriefingResponse, len(briefings))
	for i, b := range briefings {
		out[i] = toBriefingResponse(b, false)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"briefings": out, "count": len(out)})
}

func (s *Server) getBriefing(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid briefing id"}`, http.StatusBadRequest)
		return
	}

	briefing, err := s.briefings.GetBriefing(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, `{"error":"briefing not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("fetching briefing failed", "id", id, "err", err)
		http.Error(w, `{"error":"fetching briefing failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBriefingResponse(briefing, true))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
