// Package api exposes the composition pipeline over HTTP. Graphs travel in
// the canonical JSON wire format; responses carry structured error codes so
// clients can react programmatically.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/pipeline"
)

// Server handles composition requests against a shared pipeline runner.
type Server struct {
	Runner  *pipeline.Runner
	Library *card.Library
}

// NewHandler builds the HTTP routing for the composition API.
func NewHandler(runner *pipeline.Runner, library *card.Library) http.Handler {
	s := &Server{Runner: runner, Library: library}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/cards", s.listCards)
		r.Post("/graphs/validate", s.validateGraph)
		r.Post("/graphs/compile", s.compileGraph)
		r.Post("/graphs/layout", s.layoutGraph)
		r.Post("/graphs/render", s.renderGraph)
		r.Post("/adapters/suggest", s.suggestAdapters)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cards": s.Library.IDs()})
}

// decodeGraph reads a graph in the canonical wire format from the request
// body.
func decodeGraph(r *http.Request) (graph.Graph, error) {
	g, err := graph.Read(r.Body)
	if err != nil {
		return graph.Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	return g, nil
}

func (s *Server) validateGraph(w http.ResponseWriter, r *http.Request) {
	g, err := decodeGraph(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, _, err := s.Runner.ValidateWithCacheInfo(r.Context(), g, pipeline.Options{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) compileGraph(w http.ResponseWriter, r *http.Request) {
	g, err := decodeGraph(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	plan, err := s.Runner.Compile(r.Context(), g)
	if err != nil {
		// A cycle is a client problem, not a server fault.
		if errors.Is(err, errors.ErrCodeGraphCycle) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) layoutGraph(w http.ResponseWriter, r *http.Request) {
	g, err := decodeGraph(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	laid, _, err := s.Runner.LayoutWithCacheInfo(r.Context(), g, pipeline.Options{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := graph.Marshal(laid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// renderRequest wraps a graph with render options.
type renderRequest struct {
	Graph    json.RawMessage `json:"graph"`
	Format   string          `json:"format"`
	Detailed bool            `json:"detailed"`
}

func (s *Server) renderGraph(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	g, err := graph.Unmarshal(req.Graph)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph"))
		return
	}
	format := req.Format
	if format == "" {
		format = pipeline.FormatDOT
	}

	opts := pipeline.Options{Graph: &g, Formats: []string{format}, Detailed: req.Detailed}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	artifacts, _, err := s.Runner.RenderWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch format {
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	case pipeline.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// suggestRequest asks for conversion candidates between two port types.
type suggestRequest struct {
	SourceType string `json:"source_type"`
	TargetType string `json:"target_type"`
}

type suggestionJSON struct {
	Adapters   []string `json:"adapters"`
	TotalCost  float64  `json:"total_cost"`
	Lossless   bool     `json:"lossless"`
	Confidence float64  `json:"confidence"`
}

func (s *Server) suggestAdapters(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.SourceType == "" || req.TargetType == "" {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "source_type and target_type are required"))
		return
	}

	var out []suggestionJSON
	for _, sug := range s.Runner.Registry.Suggest(req.SourceType, req.TargetType) {
		sj := suggestionJSON{
			TotalCost:  sug.Path.TotalCost,
			Lossless:   sug.Path.Lossless,
			Confidence: sug.Confidence,
		}
		for _, a := range sug.Path.Adapters {
			sj.Adapters = append(sj.Adapters, a.ID)
		}
		out = append(out, sj)
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}

// errorResponse is the uniform error payload.
type errorResponse struct {
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
