// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/boatfinder/internal/app/system/httpapi"
)

// PrincipalHeader carries the platform-injected identity assertion: a
// base64 JSON document produced by the hosting platform's auth layer
// after it has verified the user with the external identity provider.
const PrincipalHeader = "x-ms-client-principal"

// Principal is the authenticated identity injected into r.Context().
type Principal struct {
	UserID   string `json:"userId"`
	Email    string `json:"userDetails"`
	Provider string `json:"identityProvider"`
}

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentPrincipal returns the principal and a "found?" flag.
func CurrentPrincipal(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	return p, ok
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// LoadPrincipal decodes the principal header into context if present.
// Requests without the header (or with a garbled one) pass through
// unauthenticated; RequireUser decides whether that matters.
func LoadPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := decode(r.Header.Get(PrincipalHeader)); p != nil {
			r = withPrincipal(r, p)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser ensures there is a principal in context (set by
// LoadPrincipal) and answers 401 otherwise.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentPrincipal(r); !ok {
			httpapi.WriteError(w, nil, httpapi.Unauthorized("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decode(header string) *Principal {
	if header == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil
	}
	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	if strings.TrimSpace(p.UserID) == "" {
		return nil
	}
	return &p
}

// WithTestPrincipal injects a principal directly into the request
// context. Test helper; production requests go through LoadPrincipal.
func WithTestPrincipal(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}

// EncodePrincipal builds the header value for a principal. Used by
// tests and local tooling that talk to a running server.
func EncodePrincipal(p Principal) string {
	raw, _ := json.Marshal(p)
	return base64.StdEncoding.EncodeToString(raw)
}
