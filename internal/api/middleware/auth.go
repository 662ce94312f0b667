package middleware

import (
	"context"
	"net/http"

	"github.com/edvin/provisioning/internal/api/response"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller. The password is kept so it can be
// passed through to central servers.
type Identity struct {
	Username string
	Password string
}

// Authenticator verifies Basic auth credentials.
type Authenticator interface {
	Authenticate(username, password string) error
}

// BasicAuth returns a middleware that authenticates the caller with HTTP
// Basic auth and stores the Identity in the request context.
func BasicAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// A missing or malformed header leaves both empty.
			username, password, _ := r.BasicAuth()

			if err := auth.Authenticate(username, password); err != nil {
				body := BufferBody(r)
				w.Header().Set("WWW-Authenticate", `Basic realm="provisioning"`)
				env := response.WriteProblem(w, err)
				LogFailure(r, body, env, err)
				return
			}

			GetRequestInfo(r.Context()).User = username
			ctx := WithIdentity(r.Context(), &Identity{Username: username, Password: password})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity extracts the Identity from the request context.
func GetIdentity(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
