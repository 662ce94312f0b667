package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioning/internal/api/response"
)

// Recoverer recovers from panics, logs them with the stack and answers with
// a 500 envelope. It replaces chi's middleware.Recoverer, which writes an
// empty body.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			err := fmt.Errorf("panic: %v", rvr)
			zerolog.Ctx(r.Context()).Error().
				Err(err).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic")

			if r.Header.Get("Connection") != "Upgrade" {
				response.WriteProblem(w, err)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
