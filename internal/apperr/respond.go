package apperr

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ats/pkg/utilities"
)

// Status maps err onto an HTTP status code.
func Status(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		br *BadRequestError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &br):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error body. Unexpected errors are logged and
// replaced with a generic message.
func Respond(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, err error) {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		br *BadRequestError
	)
	switch {
	case errors.As(err, &ve):
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Fields})
	case errors.As(err, &br):
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": br.Message})
	case errors.As(err, &nf):
		utilities.WriteJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
	case errors.As(err, &ce):
		utilities.WriteJSON(w, http.StatusConflict, map[string]string{"error": ce.Message})
	default:
		logger.Errorw("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", utilities.RequestID(r.Context()),
			"err", err,
		)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
