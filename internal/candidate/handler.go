package candidate

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
	"github.com/ovaphlow/pitchfork/service-ats/pkg/utilities"
)

var (
	errInvalidID      = apperr.BadRequest("Invalid ID")
	errInvalidPayload = apperr.BadRequest("invalid payload")
)

// Handler exposes the candidate endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the candidate routes under prefix, e.g. "/api/candidates".
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix, h.List)
	mux.HandleFunc("POST "+prefix, h.Create)
	mux.HandleFunc("GET "+prefix+"/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/{id}", h.Delete)
	for _, kind := range entity.Kinds {
		mux.HandleFunc("GET "+prefix+"/{id}/"+string(kind), h.ListSubRows(kind))
		mux.HandleFunc("PUT "+prefix+"/{id}/"+string(kind), h.ReplaceSubRows(kind))
		if !kind.IsContact() {
			continue
		}
		mux.HandleFunc("POST "+prefix+"/{id}/"+string(kind), h.AddSubRow(kind))
		mux.HandleFunc("PUT "+prefix+"/{id}/"+string(kind)+"/{subId}", h.UpdateSubRow(kind))
		mux.HandleFunc("DELETE "+prefix+"/{id}/"+string(kind)+"/{subId}", h.DeleteSubRow(kind))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apperr.Respond(w, r, h.logger, err)
}

// List handles GET /candidates?limit=&offset=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context(), utilities.QueryInt(r, "limit", 0), utilities.QueryInt(r, "offset", 0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := utilities.PathInt64(r, "id")
	if !ok {
		h.fail(w, r, errInvalidID)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateCandidateInput
	if err := utilities.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debugw("invalid candidate payload", "err", err)
		h.fail(w, r, errInvalidPayload)
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Infow("candidate created", "id", c.ID, "request_id", utilities.RequestID(r.Context()))
	utilities.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := utilities.PathInt64(r, "id")
	if !ok {
		h.fail(w, r, errInvalidID)
		return
	}
	var in UpdateCandidateInput
	if err := utilities.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debugw("invalid candidate payload", "err", err)
		h.fail(w, r, errInvalidPayload)
		return
	}
	c, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := utilities.PathInt64(r, "id")
	if !ok {
		h.fail(w, r, errInvalidID)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Infow("candidate deleted", "id", id, "request_id", utilities.RequestID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// ListSubRows returns a handler for GET /candidates/{id}/<kind>. The rows are
// wrapped in an object keyed by kind.
func (h *Handler) ListSubRows(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := utilities.PathInt64(r, "id")
		if !ok {
			h.fail(w, r, errInvalidID)
			return
		}
		rows, err := h.svc.ListSubRows(r.Context(), id, kind)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		utilities.WriteJSON(w, http.StatusOK, map[string]any{string(kind): rows})
	}
}

// ReplaceSubRows returns a handler for PUT /candidates/{id}/<kind>. The body
// is the full array of rows; the response is the refreshed candidate.
func (h *Handler) ReplaceSubRows(kind entity.Kind) http.HandlerFunc {
	switch kind {
	case entity.Emails:
		return replaceSubRows[EmailList](h)
	case entity.Phones:
		return replaceSubRows[PhoneList](h)
	case entity.Addresses:
		return replaceSubRows[AddressList](h)
	case entity.Educations:
		return replaceSubRows[EducationList](h)
	case entity.Experiences:
		return replaceSubRows[ExperienceList](h)
	}
	panic("candidate: unknown sub-collection " + string(kind))
}

// AddSubRow returns a handler for POST /candidates/{id}/<kind>.
func (h *Handler) AddSubRow(kind entity.Kind) http.HandlerFunc {
	switch kind {
	case entity.Emails:
		return addSubRow[EmailInput](h)
	case entity.Phones:
		return addSubRow[PhoneInput](h)
	case entity.Addresses:
		return addSubRow[AddressInput](h)
	}
	panic("candidate: no row writes for " + string(kind))
}

// UpdateSubRow returns a handler for PUT /candidates/{id}/<kind>/{subId}.
func (h *Handler) UpdateSubRow(kind entity.Kind) http.HandlerFunc {
	switch kind {
	case entity.Emails:
		return updateSubRow[EmailPatch](h)
	case entity.Phones:
		return updateSubRow[PhonePatch](h)
	case entity.Addresses:
		return updateSubRow[AddressPatch](h)
	}
	panic("candidate: no row writes for " + string(kind))
}

// DeleteSubRow returns a handler for DELETE /candidates/{id}/<kind>/{subId}.
func (h *Handler) DeleteSubRow(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := utilities.PathInt64(r, "id")
		subID, ok2 := utilities.PathInt64(r, "subId")
		if !ok || !ok2 {
			h.fail(w, r, errInvalidID)
			return
		}
		if err := h.svc.DeleteSubRow(r.Context(), id, kind, subID); err != nil {
			h.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addSubRow[T ContactInput](h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := utilities.PathInt64(r, "id")
		if !ok {
			h.fail(w, r, errInvalidID)
			return
		}
		var in T
		if err := utilities.DecodeJSON(w, r, &in); err != nil {
			h.logger.Debugw("invalid row payload", "kind", in.Kind(), "err", err)
			h.fail(w, r, errInvalidPayload)
			return
		}
		row, err := h.svc.AddSubRow(r.Context(), id, in)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		utilities.WriteJSON(w, http.StatusCreated, row)
	}
}

func updateSubRow[T ContactPatch](h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := utilities.PathInt64(r, "id")
		subID, ok2 := utilities.PathInt64(r, "subId")
		if !ok || !ok2 {
			h.fail(w, r, errInvalidID)
			return
		}
		var p T
		if err := utilities.DecodeJSON(w, r, &p); err != nil {
			h.logger.Debugw("invalid row payload", "kind", p.Kind(), "err", err)
			h.fail(w, r, errInvalidPayload)
			return
		}
		row, err := h.svc.UpdateSubRow(r.Context(), id, subID, p)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		utilities.WriteJSON(w, http.StatusOK, row)
	}
}

func replaceSubRows[L SubCollection](h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := utilities.PathInt64(r, "id")
		if !ok {
			h.fail(w, r, errInvalidID)
			return
		}
		var rows L
		if err := utilities.DecodeJSON(w, r, &rows); err != nil {
			h.logger.Debugw("invalid rows payload", "kind", rows.Kind(), "err", err)
			h.fail(w, r, errInvalidPayload)
			return
		}
		c, err := h.svc.ReplaceSubCollection(r.Context(), id, rows)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		utilities.WriteJSON(w, http.StatusOK, c)
	}
}
