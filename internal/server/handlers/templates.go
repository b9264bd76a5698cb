package handlers

import (
	"net/http"

	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
)

// TemplateRequest is the body of the stateless /templates endpoints.
type TemplateRequest struct {
	Content   string                 `json:"content"`
	Variables []variables.Definition `json:"variables"`
	Values    variables.Values       `json:"values"`
}

// ExtractResponse lists placeholder keys in first-occurrence order.
type ExtractResponse struct {
	Keys []string `json:"keys"`
}

// ExtractHandler handles POST /templates/extract.
func ExtractHandler(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	writeJSON(w, http.StatusOK, ExtractResponse{Keys: prompts.Extract(req.Content)})
}

// SyncHandler handles POST /templates/sync.
func SyncHandler(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	writeJSON(w, http.StatusOK, prompts.Sync(req.Content, req.Variables))
}

// PreviewHandler handles POST /templates/preview.
func PreviewHandler(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	writeJSON(w, http.StatusOK, prompts.Preview(req.Content, req.Variables, req.Values))
}
