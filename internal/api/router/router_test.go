package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curesight/triage-platform/internal/auth"
	"github.com/curesight/triage-platform/internal/http/handlers"
	"github.com/curesight/triage-platform/internal/notes"
	"github.com/curesight/triage-platform/internal/policy"
	"github.com/curesight/triage-platform/internal/queries"
	"github.com/curesight/triage-platform/internal/triage"
)

type stubPolicies struct{}

func (stubPolicies) LoadRules(context.Context) (policy.RuleSet, error) {
	return policy.DefaultRules(), nil
}
func (stubPolicies) SaveRules(context.Context, policy.RuleSet) error { return nil }
func (stubPolicies) LoadContent(context.Context) (policy.ContentSet, error) {
	return policy.DefaultContent(), nil
}
func (stubPolicies) SaveContent(context.Context, policy.ContentSet) error { return nil }

type stubRecorder struct{}

func (stubRecorder) Record(context.Context, *queries.Record) queries.Outcome {
	return queries.Outcome{QueryID: "q-test", Recorded: true}
}

type stubLister struct{}

func (stubLister) ListRecent(context.Context, int) ([]queries.Record, error) {
	return []queries.Record{}, nil
}

type stubNotes struct{}

func (stubNotes) Add(_ context.Context, n *notes.Note) error {
	n.ID = 1
	return nil
}
func (stubNotes) ListForQuery(context.Context, string) ([]notes.Note, error) {
	return []notes.Note{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	policies := stubPolicies{}
	authenticator := auth.NewHMACAuthenticator("router-secret", "admin", "hunter2")
	engine := triage.NewEngine(policies, nil)

	return New(&Config{
		Analyze: handlers.NewAnalyzeHandler(engine, stubRecorder{}, nil, nil, nil, nil),
		TTS:     handlers.NewTTSHandler(nil, nil),
		Admin:   handlers.NewAdminHandler(authenticator, policies, stubLister{}, stubNotes{}, nil, nil),
		Health:  handlers.NewHealthHandler(policies, nil),
		Auth:    authenticator,
	})
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAnalyzeTextEndToEnd(t *testing.T) {
	r := newTestRouter(t)

	body := `{"text":"severe chest pain and difficulty breathing"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/text", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Category string `json:"category"`
		Severity string `json:"severity"`
		Reason   string `json:"reason"`
		QueryID  string `json:"query_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cardiac", resp.Category)
	assert.Equal(t, "emergency", resp.Severity)
	assert.Contains(t, resp.Reason, "Red flag triggered")
	assert.Equal(t, "q-test", resp.QueryID)
}

func TestRouterAdminRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/rules", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterAdminLoginThenAccess(t *testing.T) {
	r := newTestRouter(t)

	login := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin","password":"hunter2"}`))
	loginRec := httptest.NewRecorder()
	r.ServeHTTP(loginRec, login)
	require.Equal(t, http.StatusOK, loginRec.Code)

	var loginResp map[string]string
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &loginResp))
	token := loginResp["token"]
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/rules", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "red_flags")
}

func TestRouterTTSUnconfigured(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tts?text=rest+and+fluids", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
