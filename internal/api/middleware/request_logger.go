package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const requestInfoKey contextKey = "request_info"

// RequestInfo carries gateway fields for the access log line. Inner
// handlers fill it in after the logger has wrapped the request.
type RequestInfo struct {
	User          string
	ObjectType    string
	ObjectID      string
	CentralServer int
}

// GetRequestInfo returns the request's RequestInfo. Outside RequestLogger it
// returns a detached value so callers never nil-check.
func GetRequestInfo(ctx context.Context) *RequestInfo {
	if info, ok := ctx.Value(requestInfoKey).(*RequestInfo); ok {
		return info
	}
	return &RequestInfo{}
}

// RequestLogger returns a middleware that logs each request. The request
// scoped logger is stored in the context for zerolog.Ctx.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := middleware.GetReqID(r.Context())
			reqLogger := logger.With().Str("request_id", reqID).Logger()
			info := &RequestInfo{}
			ctx := context.WithValue(reqLogger.WithContext(r.Context()), requestInfoKey, info)
			r = r.WithContext(ctx)

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			ev := reqLogger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr)
			if info.User != "" {
				ev = ev.Str("user", info.User)
			}
			if info.ObjectType != "" {
				ev = ev.Str("object_type", info.ObjectType)
			}
			if info.ObjectID != "" {
				ev = ev.Str("object_id", info.ObjectID)
			}
			if info.CentralServer != 0 {
				ev = ev.Int("central_server", info.CentralServer)
			}
			ev.Int("status", ww.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
