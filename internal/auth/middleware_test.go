package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func adminToken(t *testing.T, a *HMACAuthenticator) string {
	t.Helper()
	token, err := a.Issue("admin", "curesight")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestRequireAdminMissingToken(t *testing.T) {
	a := NewHMACAuthenticator("topsecret", "admin", "curesight")
	handler := RequireAdmin(a)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/rules", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
}

func TestRequireAdminBearerHeader(t *testing.T) {
	a := NewHMACAuthenticator("topsecret", "admin", "curesight")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok || principal != "admin" {
			t.Fatalf("expected principal propagated, got %q / %v", principal, ok)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAdmin(a)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/rules", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, a))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected downstream status, got %d", rr.Code)
	}
}

func TestRequireAdminQueryParam(t *testing.T) {
	a := NewHMACAuthenticator("topsecret", "admin", "curesight")
	handler := RequireAdmin(a)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/rules?token="+adminToken(t, a), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected downstream status via query token, got %d", rr.Code)
	}
}

func TestRequireAdminExpiredToken(t *testing.T) {
	a := NewHMACAuthenticator("topsecret", "admin", "curesight")
	a.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }

	handler := RequireAdmin(a)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/rules", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, a))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rr.Code)
	}
}
