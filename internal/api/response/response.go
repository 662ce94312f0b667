package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/model"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteEnvelope writes env with the HTTP status equal to its result code.
func WriteEnvelope(w http.ResponseWriter, env model.Envelope) {
	WriteJSON(w, int(env.ResultCode), env)
}

// ErrorEnvelope renders err as an envelope. Classified errors keep their
// description and details; anything else becomes a bare 500 so internal
// error text never reaches the client.
func ErrorEnvelope(err error) model.Envelope {
	var cerr *core.Error
	if errors.As(err, &cerr) {
		env := model.NewEnvelope(cerr.Kind.ResultCode(), cerr.Description)
		env.Details = cerr.Details
		return env
	}
	return model.NewEnvelope(model.ResultInternalError, "")
}

// WriteProblem writes the envelope for err and returns it.
func WriteProblem(w http.ResponseWriter, err error) model.Envelope {
	env := ErrorEnvelope(err)
	WriteEnvelope(w, env)
	return env
}
