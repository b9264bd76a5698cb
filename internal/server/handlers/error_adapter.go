package handlers

import (
	"net/http"

	apperrors "github.com/mkashifaslam/prompt-studio/internal/errors"
)

// httpErrorResponder writes every handler error. The server package swaps in
// its own HandleError so probes and API routes share one error path.
var httpErrorResponder = apperrors.RespondWithError

// SetHTTPErrorResponder replaces the error writer; nil restores the default.
func SetHTTPErrorResponder(responder func(http.ResponseWriter, *http.Request, error)) {
	if responder == nil {
		responder = apperrors.RespondWithError
	}
	httpErrorResponder = responder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
