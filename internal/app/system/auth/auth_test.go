package auth_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/boatfinder/internal/app/system/auth"
)

func principalRequest(t *testing.T, header string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/users/me", nil)
	if header != "" {
		req.Header.Set(auth.PrincipalHeader, header)
	}
	return req
}

func currentAfterLoad(req *http.Request) (*auth.Principal, bool) {
	var p *auth.Principal
	var ok bool
	h := auth.LoadPrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok = auth.CurrentPrincipal(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	return p, ok
}

func TestLoadPrincipal_ValidHeader(t *testing.T) {
	header := auth.EncodePrincipal(auth.Principal{
		UserID:   "user-123",
		Email:    "alice@example.com",
		Provider: "aad",
	})

	p, ok := currentAfterLoad(principalRequest(t, header))
	if !ok {
		t.Fatal("expected a principal in context")
	}
	if p.UserID != "user-123" {
		t.Errorf("userID: got %q, want user-123", p.UserID)
	}
	if p.Email != "alice@example.com" {
		t.Errorf("email: got %q", p.Email)
	}
}

func TestLoadPrincipal_MissingHeader(t *testing.T) {
	if _, ok := currentAfterLoad(principalRequest(t, "")); ok {
		t.Fatal("no header must mean no principal")
	}
}

func TestLoadPrincipal_BadBase64(t *testing.T) {
	if _, ok := currentAfterLoad(principalRequest(t, "not base64!!")); ok {
		t.Fatal("undecodable header must mean no principal")
	}
}

func TestLoadPrincipal_BadJSON(t *testing.T) {
	header := base64.StdEncoding.EncodeToString([]byte("{not json"))
	if _, ok := currentAfterLoad(principalRequest(t, header)); ok {
		t.Fatal("malformed JSON must mean no principal")
	}
}

func TestLoadPrincipal_EmptyUserID(t *testing.T) {
	header := auth.EncodePrincipal(auth.Principal{Email: "alice@example.com"})
	if _, ok := currentAfterLoad(principalRequest(t, header)); ok {
		t.Fatal("principal without a user id must be rejected")
	}
}

func TestRequireUser(t *testing.T) {
	called := false
	h := auth.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// No principal: 401, inner handler untouched.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, principalRequest(t, ""))
	if called {
		t.Fatal("inner handler must not run without a principal")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	// With principal: passes through.
	req := auth.WithTestPrincipal(principalRequest(t, ""), &auth.Principal{UserID: "u1", Email: "a@b.c"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !called {
		t.Fatal("inner handler should run with a principal")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}
