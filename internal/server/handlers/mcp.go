package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkashifaslam/prompt-studio/internal/core/mcp"
)

// McpHandler serves the /mcp resource.
type McpHandler struct {
	service *mcp.Service
}

// NewMcpHandler wraps an MCP configuration service.
func NewMcpHandler(service *mcp.Service) *McpHandler {
	return &McpHandler{service: service}
}

// List handles GET /mcp.
func (h *McpHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Get handles GET /mcp/{id}.
func (h *McpHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Upsert handles POST /mcp/{name}; the body is the server configuration.
func (h *McpHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	record, err := h.service.Upsert(r.Context(), chi.URLParam(r, "ref"), raw)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /mcp/{id}.
func (h *McpHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "ref")); err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{OK: true})
}
