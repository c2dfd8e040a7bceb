package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vyronlabs/agencyos/internal/assistant"
	"github.com/vyronlabs/agencyos/internal/brain"
	"github.com/vyronlabs/agencyos/internal/log"
)

// Ingestor records individual knowledge units.
type Ingestor interface {
	LogInteraction(ctx context.Context, scope string, kind brain.SourceKind,
		text string, metadata map[string]string) (*brain.Unit, error)
}

// Retriever searches recorded knowledge by semantic similarity.
type Retriever interface {
	Retrieve(ctx context.Context, query, scope string, k int,
		kinds ...brain.SourceKind) ([]brain.Result, error)
}

// Answerer produces a grounded answer for a chat exchange.
type Answerer interface {
	Answer(ctx context.Context, history []assistant.Turn, message, scopeRef string) (string, error)
}

// KnowledgeHandler serves ingestion, search, and ask endpoints.
type KnowledgeHandler struct {
	ingestor  Ingestor
	retriever Retriever
	answerer  Answerer
	logger    log.Logger
}

// NewKnowledgeHandler creates a knowledge handler.
func NewKnowledgeHandler(ingestor Ingestor, retriever Retriever, answerer Answerer, logger log.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		ingestor:  ingestor,
		retriever: retriever,
		answerer:  answerer,
		logger:    logger,
	}
}

// RegisterRoutes registers knowledge routes on the given mux.
func (h *KnowledgeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingest", h.ingest)
	mux.HandleFunc("POST /api/search", h.search)
	mux.HandleFunc("POST /api/ask", h.ask)
}

type ingestRequest struct {
	SourceKind string            `json:"source_kind"`
	Text       string            `json:"text"`
	ScopeRef   string            `json:"scope_ref"`
	Metadata   map[string]string `json:"metadata"`
}

func (h *KnowledgeHandler) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", h.logger)
		return
	}

	kind := brain.SourceKind(req.SourceKind)
	if req.SourceKind == "" {
		kind = brain.SourceManualInteraction
	}

	unit, err := h.ingestor.LogInteraction(r.Context(), req.ScopeRef, kind, req.Text, req.Metadata)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, unit, h.logger)
}

type searchRequest struct {
	Query    string   `json:"query"`
	ScopeRef string   `json:"scope_ref"`
	Limit    int      `json:"limit"`
	Kinds    []string `json:"kinds"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []brain.Result `json:"results"`
	Total   int            `json:"total"`
}

func (h *KnowledgeHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", h.logger)
		return
	}

	kinds := make([]brain.SourceKind, 0, len(req.Kinds))
	for _, k := range req.Kinds {
		kind := brain.SourceKind(k)
		if !kind.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_input", "unknown source kind: "+k, h.logger)
			return
		}
		kinds = append(kinds, kind)
	}

	results, err := h.retriever.Retrieve(r.Context(), req.Query, req.ScopeRef, req.Limit, kinds...)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if results == nil {
		results = []brain.Result{}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: results,
		Total:   len(results),
	}, h.logger)
}

type askRequest struct {
	Message  string           `json:"message"`
	ScopeRef string           `json:"scope_ref"`
	History  []assistant.Turn `json:"history"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *KnowledgeHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", h.logger)
		return
	}

	answer, err := h.answerer.Answer(r.Context(), req.History, req.Message, req.ScopeRef)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer}, h.logger)
}
