package catalog

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ats/internal/catalog/entity"
	"github.com/ovaphlow/pitchfork/service-ats/pkg/utilities"
)

// Handler serves the catalog listings used to populate selection lists.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List returns a handler listing one catalog.
func (h *Handler) List(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := h.svc.List(r.Context(), kind)
		if err != nil {
			apperr.Respond(w, r, h.logger, err)
			return
		}
		utilities.WriteJSON(w, http.StatusOK, types)
	}
}
