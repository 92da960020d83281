package auth

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Auth guards the admin endpoints with a single operator bearer token.
type Auth struct {
	tokenHash []byte
}

// NewAuth creates an Auth instance from a bcrypt token hash. An empty hash
// disables the admin endpoints entirely.
func NewAuth(tokenHash []byte) *Auth {
	return &Auth{tokenHash: tokenHash}
}

// Enabled reports whether an admin token is configured
func (a *Auth) Enabled() bool {
	return len(a.tokenHash) > 0
}

// Verify checks a presented token against the configured hash
func (a *Auth) Verify(token string) bool {
	if !a.Enabled() || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.tokenHash, []byte(token)) == nil
}

// RequireAuth wraps a handler with bearer-token authentication
func (a *Auth) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || !a.Verify(token) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
