package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/vyronlabs/agencyos/internal/brain"
	"github.com/vyronlabs/agencyos/internal/log"
)

// DocumentIngestor chunks and stores whole documents.
type DocumentIngestor interface {
	IngestDocument(ctx context.Context, scope, filename, content string) (*brain.Document, error)
}

// DocumentStore lists and removes stored documents and reports scope stats.
type DocumentStore interface {
	ListDocuments(ctx context.Context, scope string) ([]brain.Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, scope string) (brain.Stats, error)
}

// DocumentsHandler serves document upload, listing, and removal.
type DocumentsHandler struct {
	ingestor DocumentIngestor
	store    DocumentStore
	logger   log.Logger
}

// NewDocumentsHandler creates a documents handler.
func NewDocumentsHandler(ingestor DocumentIngestor, store DocumentStore, logger log.Logger) *DocumentsHandler {
	return &DocumentsHandler{ingestor: ingestor, store: store, logger: logger}
}

// RegisterRoutes registers document routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/documents", h.create)
	mux.HandleFunc("GET /api/documents", h.list)
	mux.HandleFunc("DELETE /api/documents/{id}", h.remove)
	mux.HandleFunc("DELETE /api/units/{id}", h.deactivateUnit)
	mux.HandleFunc("GET /api/stats", h.stats)
}

type createDocumentRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
	ScopeRef string `json:"scope_ref"`
}

func (h *DocumentsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", h.logger)
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "filename is required", h.logger)
		return
	}

	doc, err := h.ingestor.IngestDocument(r.Context(), req.ScopeRef, req.Filename, req.Text)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, doc, h.logger)
}

type listDocumentsResponse struct {
	Documents []brain.Document `json:"documents"`
	Total     int              `json:"total"`
}

func (h *DocumentsHandler) list(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope_ref")

	docs, err := h.store.ListDocuments(r.Context(), scope)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if docs == nil {
		docs = []brain.Document{}
	}

	writeJSON(w, http.StatusOK, listDocumentsResponse{Documents: docs, Total: len(docs)}, h.logger)
}

func (h *DocumentsHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid document id", h.logger)
		return
	}

	if err := h.store.DeleteDocument(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deactivateUnit soft-removes a single knowledge unit. The row stays in
// storage but stops appearing in search results.
func (h *DocumentsHandler) deactivateUnit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid unit id", h.logger)
		return
	}

	if err := h.store.Deactivate(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentsHandler) stats(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope_ref")

	stats, err := h.store.Stats(r.Context(), scope)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats, h.logger)
}
