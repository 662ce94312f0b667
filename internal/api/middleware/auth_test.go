package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/provisioning/internal/core"
)

type fakeAuth map[string]string

func (f fakeAuth) Authenticate(username, password string) error {
	if username == "" {
		return core.ErrNoUsername
	}
	if password == "" {
		return core.ErrNoPassword
	}
	if f[username] != password {
		return core.ErrInvalidCredentials
	}
	return nil
}

func TestBasicAuth(t *testing.T) {
	tests := []struct {
		name        string
		user, pass  string
		setAuth     bool
		wantStatus  int
		wantMessage string
	}{
		{"no header", "", "", false, http.StatusUnauthorized, "Username is not specified"},
		{"empty password", "alice", "", true, http.StatusUnauthorized, "Password is not specified"},
		{"wrong password", "alice", "nope", true, http.StatusUnauthorized, "Invalid username or password"},
		{"unknown user", "mallory", "pw", true, http.StatusUnauthorized, "Invalid username or password"},
		{"ok", "alice", "s3cret", true, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Identity
			h := BasicAuth(fakeAuth{"alice": "s3cret"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetIdentity(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/provisioning/tlds", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, got)
				assert.Equal(t, "alice", got.Username)
				assert.Equal(t, "s3cret", got.Password)
				return
			}
			assert.Nil(t, got)
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, float64(401), body["resultCode"])
			assert.Equal(t, tt.wantMessage, body["description"])
		})
	}
}

func TestBasicAuth_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := BasicAuth(fakeAuth{})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/provisioning/tlds/example", strings.NewReader(`{"password":"x","a":1}`))
	req = req.WithContext(logger.WithContext(req.Context()))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "PUT", entry["method"])
	assert.Equal(t, "/api/v1/provisioning/tlds/example", entry["path"])
	assert.Contains(t, entry["request_body"], "[REDACTED]")
	assert.NotContains(t, entry["request_body"], `"x"`)
	assert.Equal(t, float64(401), entry["response_body"].(map[string]any)["resultCode"])
}
