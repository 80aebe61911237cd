// Package server exposes the completion engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pathweaver/internal/engine"
	"pathweaver/internal/export"
	"pathweaver/internal/model"
	"pathweaver/internal/pathway"
)

// Server wraps the HTTP listener around the engine.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// PathwayReader is the template lookup surface the read endpoints need.
type PathwayReader interface {
	FindSimilar(ctx context.Context, query string, limit int) ([]model.PathwayTemplate, error)
	GetByID(ctx context.Context, id string) (model.PathwayTemplate, error)
}

// New builds a Server listening on addr.
func New(addr string, eng *engine.Engine, store PathwayReader, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("server")
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewMux(eng, store, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.log.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// NewMux wires the API routes.
func NewMux(eng *engine.Engine, store PathwayReader, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{engine: eng, store: store, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", h.predict)
	mux.HandleFunc("POST /predict/{pathway_id}", h.predictByID)
	mux.HandleFunc("GET /pathways/similar", h.findSimilar)
	mux.HandleFunc("GET /pathways/{pathway_id}", h.getPathway)
	mux.HandleFunc("POST /export", h.export)
	mux.HandleFunc("GET /healthz", h.health)
	return mux
}

type handlers struct {
	engine *engine.Engine
	store  PathwayReader
	log    *zap.Logger
}

type predictRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	completed, err := h.engine.Predict(r.Context(), req.Query)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completed)
}

func (h *handlers) predictByID(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("pathway_id")
	completed, err := h.engine.PredictByID(r.Context(), id, req.Query)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completed)
}

func (h *handlers) findSimilar(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	templates, err := h.store.FindSimilar(r.Context(), query, limit)
	if err != nil {
		h.log.Error("similarity lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "pathway lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *handlers) getPathway(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.store.GetByID(r.Context(), r.PathValue("pathway_id"))
	if err != nil {
		if errors.Is(err, pathway.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pathway not found")
			return
		}
		h.log.Error("pathway lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "pathway lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// export renders a completed pathway posted by the client. Format csv or
// xml, default csv.
func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	var plan model.CompletedPathway
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="pathway.csv"`)
		if err := export.WriteCSV(w, plan); err != nil {
			h.log.Error("csv export failed", zap.Error(err))
		}
	case "xml":
		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Content-Disposition", `attachment; filename="pathway.xml"`)
		if err := export.WriteXML(w, plan); err != nil {
			h.log.Error("xml export failed", zap.Error(err))
		}
	default:
		writeError(w, http.StatusBadRequest, "unsupported format "+strconv.Quote(format))
	}
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeEngineError maps pipeline errors onto HTTP statuses.
func (h *handlers) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pathway.ErrNotFound):
		writeError(w, http.StatusNotFound, "pathway not found")
	case errors.Is(err, engine.ErrNoPathways):
		writeError(w, http.StatusNotFound, "no pathway templates matched the query")
	case errors.Is(err, model.ErrMalformedTemplate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error("prediction failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "prediction failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
