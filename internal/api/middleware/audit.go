package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioning/internal/model"
)

// MaxBodyBytes caps request bodies read by the gateway.
const MaxBodyBytes = 1 << 20

// BufferBody reads up to MaxBodyBytes+1 bytes of the request body and puts
// a fresh reader back so the body can be read again downstream. A result
// longer than MaxBodyBytes means the body was truncated.
func BufferBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

// LogFailure writes one diagnostic entry for a failed request with the
// request body and the rendered response. Errors carrying their own log
// fields (central server failures) add them under "upstream".
func LogFailure(r *http.Request, reqBody []byte, env model.Envelope, err error) {
	logger := zerolog.Ctx(r.Context())

	ev := logger.Warn()
	if env.ResultCode >= model.ResultInternalError {
		ev = logger.Error()
	}

	rendered, _ := json.Marshal(env)
	ev = ev.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_body", string(sanitizeBody(reqBody))).
		RawJSON("response_body", rendered)

	var upstream zerolog.LogObjectMarshaler
	if errors.As(err, &upstream) {
		ev = ev.Object("upstream", upstream)
	}
	ev.Msg("request failed")
}

// sensitiveFields are fields that should be redacted from logged bodies.
var sensitiveFields = map[string]bool{
	"password": true, "secret": true, "token": true, "api_key": true,
}

func sanitizeBody(body []byte) []byte {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}
	redacted := false
	for k := range data {
		if sensitiveFields[k] {
			data[k] = "[REDACTED]"
			redacted = true
		}
	}
	if !redacted {
		return body
	}
	sanitized, _ := json.Marshal(data)
	return sanitized
}
