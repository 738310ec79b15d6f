package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation(Field("email", "is required")), http.StatusBadRequest},
		{"bad request", BadRequest("Invalid ID"), http.StatusBadRequest},
		{"not found", NotFound("Candidate"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("Phone")), http.StatusNotFound},
		{"conflict", Conflict("stage %q already exists", "Screening"), http.StatusConflict},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestRespondValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/candidates", nil)
	Respond(rec, req, zap.NewNop().Sugar(), Validation(Field("emails[0].email", "must be a valid email address")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error []FieldError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Error, 1)
	assert.Equal(t, "emails[0].email", body.Error[0].Path)
}

func TestRespondNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/candidates/9", nil)
	Respond(rec, req, zap.NewNop().Sugar(), NotFound("Candidate"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Candidate not found"}`, rec.Body.String())
}

func TestRespondInternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stages", nil)
	Respond(rec, req, zap.NewNop().Sugar(), errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestPrefixed(t *testing.T) {
	ve := Validation(Field("email", "is required"), Field("", "at most one primary entry is allowed"))
	got := ve.Prefixed("emails[2]")
	assert.Equal(t, []FieldError{
		{Path: "emails[2].email", Message: "is required"},
		{Path: "emails[2]", Message: "at most one primary entry is allowed"},
	}, got)
}
