package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

// PromptHandler serves the /prompts resource.
type PromptHandler struct {
	service *prompts.Service
}

// NewPromptHandler wraps a prompt service.
func NewPromptHandler(service *prompts.Service) *PromptHandler {
	return &PromptHandler{service: service}
}

// RenderRequest is the body of POST /prompts/{id}/render.
type RenderRequest struct {
	Values variables.Values `json:"values"`
}

// DeleteResponse acknowledges a delete.
type DeleteResponse struct {
	OK bool `json:"ok"`
}

// List handles GET /prompts.
func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /prompts/{id}.
func (h *PromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

// Create handles POST /prompts.
func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in core.PromptInput
	if !decodeJSON(w, r, &in, false) {
		return
	}
	prompt, err := h.service.Create(r.Context(), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, prompt)
}

// Update handles PUT /prompts/{id}.
func (h *PromptHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch core.PromptPatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}
	prompt, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

// Delete handles DELETE /prompts/{id}.
func (h *PromptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{OK: true})
}

// Render handles POST /prompts/{id}/render. Value issues are returned with
// the text and do not change the status code.
func (h *PromptHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	result, err := h.service.Render(r.Context(), chi.URLParam(r, "id"), req.Values)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
