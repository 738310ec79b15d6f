package candidate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *fakeStore) {
	t.Helper()
	svc, st := newTestService()
	mux := http.NewServeMux()
	NewHandler(svc, zap.NewNop().Sugar()).Register(mux, "/api/candidates")
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

const createBody = `{
	"personalId": "P1",
	"firstName": "Ana",
	"firstSurname": "Pérez",
	"emails": [{"email": "a@x.com", "isPrimary": true}],
	"phones": [{"phone": "+1 555 1234567", "typeId": 1, "isPrimary": true}],
	"addresses": [{"address": "123 Main St", "typeId": 1, "isPrimary": true}]
}`

func TestCreateCandidateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/candidates", createBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	emails := body["emails"].([]any)
	require.Len(t, emails, 1)
	email := emails[0].(map[string]any)
	assert.Equal(t, true, email["isPrimary"])
	assert.Equal(t, "a@x.com", email["email"])
	phone := body["phones"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"id": float64(1), "name": "Celular"}, phone["type"])
	assert.Equal(t, []any{}, body["educations"])
}

func TestPromotePhoneEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	_, created := do(t, http.MethodPost, srv.URL+"/api/candidates", createBody)
	id := int64(created["id"].(float64))

	resp, added := do(t, http.MethodPost, fmt.Sprintf("%s/api/candidates/%d/phones", srv.URL, id), `{"phone": "5559876543", "typeId": 2}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	phoneID := int64(added["id"].(float64))

	resp, updated := do(t, http.MethodPut, fmt.Sprintf("%s/api/candidates/%d/phones/%d", srv.URL, id, phoneID), `{"isPrimary": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, updated["isPrimary"])

	resp, listed := do(t, http.MethodGet, fmt.Sprintf("%s/api/candidates/%d/phones", srv.URL, id), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var primary []float64
	for _, p := range listed["phones"].([]any) {
		row := p.(map[string]any)
		if row["isPrimary"] == true {
			primary = append(primary, row["id"].(float64))
		}
	}
	assert.Equal(t, []float64{float64(phoneID)}, primary)
}

func TestCandidateEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	_, created := do(t, http.MethodPost, srv.URL+"/api/candidates", createBody)
	id := int64(created["id"].(float64))

	tests := []struct {
		name, method, path, body string
		status                   int
		errBody                  any
	}{
		{"bad id", http.MethodGet, "/api/candidates/abc", "", http.StatusBadRequest, "Invalid ID"},
		{"zero id", http.MethodDelete, "/api/candidates/0", "", http.StatusBadRequest, "Invalid ID"},
		{"missing candidate", http.MethodGet, "/api/candidates/999", "", http.StatusNotFound, "Candidate not found"},
		{"broken json", http.MethodPost, "/api/candidates", "{", http.StatusBadRequest, "invalid payload"},
		{"foreign row", http.MethodDelete, fmt.Sprintf("/api/candidates/%d/emails/999", id), "", http.StatusNotFound, "Email not found"},
		{"duplicate personal id", http.MethodPost, "/api/candidates", createBody, http.StatusConflict, nil},
		{"validation", http.MethodPost, fmt.Sprintf("/api/candidates/%d/emails", id), `{"email": "nope"}`, http.StatusBadRequest,
			[]any{map[string]any{"path": "email", "message": "must be a valid email address"}}},
		{"no writes for educations", http.MethodPost, fmt.Sprintf("/api/candidates/%d/educations", id), `{}`, http.StatusMethodNotAllowed, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.errBody != nil {
				assert.Equal(t, tt.errBody, body["error"])
			}
		})
	}
}

func TestUpdateAndDeleteEndpoints(t *testing.T) {
	srv, st := newTestServer(t)
	_, created := do(t, http.MethodPost, srv.URL+"/api/candidates", createBody)
	id := int64(created["id"].(float64))
	url := fmt.Sprintf("%s/api/candidates/%d", srv.URL, id)

	resp, updated := do(t, http.MethodPut, url, `{
		"resumeUrl": "https://cv.example.com/ana.pdf",
		"educations": [{"id": 7, "institution": "UNAM", "degree": "BSc", "startDate": "2015-08-01T00:00:00.000Z", "typeId": 1, "type": {"id": 1, "name": "Universidad"}}]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://cv.example.com/ana.pdf", updated["resumeUrl"])
	edu := updated["educations"].([]any)[0].(map[string]any)
	assert.Equal(t, "2015-08-01", edu["startDate"])
	assert.NotContains(t, edu, "endDate")

	resp, listed := do(t, http.MethodGet, url+"/educations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listed["educations"], 1)

	resp, _ = do(t, http.MethodDelete, url, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, st.rowCount(id))

	resp, _ = do(t, http.MethodGet, url+"/emails", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, http.MethodPost, srv.URL+"/api/candidates", createBody)

	resp, err := http.Get(srv.URL + "/api/candidates?limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	var rows []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana Pérez", rows[0]["fullName"])
	assert.Equal(t, "a@x.com", rows[0]["email"])
	assert.Contains(t, rows[0], "entryDate")
}

func TestReplaceSubRowsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	_, created := do(t, http.MethodPost, srv.URL+"/api/candidates", createBody)
	url := fmt.Sprintf("%s/api/candidates/%d", srv.URL, int64(created["id"].(float64)))

	resp, body := do(t, http.MethodPut, url+"/experiences", `[
		{"company": "Acme", "position": "Dev", "startDate": "2020-01-01", "endDate": "2019-01-01", "typeId": 1}
	]`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []any{map[string]any{"path": "experiences[0].endDate", "message": "must not be before startDate"}}, body["error"])

	resp, body = do(t, http.MethodPut, url+"/experiences", `[
		{"company": "Acme", "position": "Dev", "startDate": "2020-01-01", "endDate": "2021-06-30", "typeId": 2}
	]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exp := body["experiences"].([]any)[0].(map[string]any)
	assert.Equal(t, "2021-06-30", exp["endDate"])

	resp, body = do(t, http.MethodPut, url+"/emails", `[]`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []any{map[string]any{"path": "emails", "message": "must contain at least 1 item(s)"}}, body["error"])
}
