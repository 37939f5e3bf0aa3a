package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// authRealm is reported in WWW-Authenticate challenges.
const authRealm = "todoist-mcp"

// authErrorResponse is the RFC 6750 error body of a rejected request.
type authErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// bearerAuth rejects requests whose Authorization header does not carry
// token as a bearer credential. Every tool runs with the server's Todoist
// key, so nothing behind it is reachable anonymously.
func bearerAuth(token string, next http.Handler) http.Handler {
	want := sha256.Sum256([]byte(token))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeUnauthorized(w, r, "", "Missing Authorization header")
			return
		}

		scheme, credential, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(credential) == "" {
			writeUnauthorized(w, r, "invalid_request", "Invalid Authorization header format")
			return
		}

		// fixed-size digests, since ConstantTimeCompare returns early on a length mismatch
		got := sha256.Sum256([]byte(strings.TrimSpace(credential)))
		if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
			writeUnauthorized(w, r, "invalid_token", "Invalid bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, code, description string) {
	challenge := fmt.Sprintf(`Bearer realm=%q`, authRealm)
	if code != "" {
		challenge += fmt.Sprintf(`, error=%q, error_description=%q`, code, description)
	}
	w.Header().Set("WWW-Authenticate", challenge)

	slog.Warn("rejected unauthenticated request",
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("reason", description))

	if code == "" {
		code = "invalid_request"
	}
	writeJSON(w, http.StatusUnauthorized, authErrorResponse{Error: code, ErrorDescription: description})
}
