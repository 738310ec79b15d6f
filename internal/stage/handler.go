package stage

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ats/pkg/utilities"
)

// Handler exposes the stage and stage-history endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts /stages and /stage-history under prefix.
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("POST "+prefix+"/stages", h.CreateStage)
	mux.HandleFunc("GET "+prefix+"/stages", h.ListStages)
	mux.HandleFunc("POST "+prefix+"/stage-history", h.RecordTransition)
	mux.HandleFunc("GET "+prefix+"/stage-history/candidate/{candidateId}", h.ListHistory)
}

func (h *Handler) CreateStage(w http.ResponseWriter, r *http.Request) {
	var in StageInput
	if err := utilities.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debugw("invalid stage payload", "err", err)
		apperr.Respond(w, r, h.logger, apperr.BadRequest("invalid payload"))
		return
	}
	st, err := h.svc.CreateStage(r.Context(), in)
	if err != nil {
		apperr.Respond(w, r, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, st)
}

func (h *Handler) ListStages(w http.ResponseWriter, r *http.Request) {
	stages, err := h.svc.ListStages(r.Context())
	if err != nil {
		apperr.Respond(w, r, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, stages)
}

func (h *Handler) RecordTransition(w http.ResponseWriter, r *http.Request) {
	var in StageHistoryInput
	if err := utilities.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debugw("invalid stage history payload", "err", err)
		apperr.Respond(w, r, h.logger, apperr.BadRequest("invalid payload"))
		return
	}
	e, err := h.svc.RecordTransition(r.Context(), in)
	if err != nil {
		apperr.Respond(w, r, h.logger, err)
		return
	}
	h.logger.Infow("stage transition recorded",
		"candidate_id", e.CandidateID,
		"stage_id", e.StageID,
		"request_id", utilities.RequestID(r.Context()),
	)
	utilities.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := utilities.PathInt64(r, "candidateId")
	if !ok {
		apperr.Respond(w, r, h.logger, apperr.BadRequest("Invalid candidateId"))
		return
	}
	entries, err := h.svc.ListHistory(r.Context(), id)
	if err != nil {
		apperr.Respond(w, r, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, entries)
}
