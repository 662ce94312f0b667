package handler

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	mw "github.com/edvin/provisioning/internal/api/middleware"
	"github.com/edvin/provisioning/internal/api/response"
	"github.com/edvin/provisioning/internal/centralserver"
	"github.com/edvin/provisioning/internal/model"
)

// fail renders err as an envelope and logs the failure with the request body.
func fail(w http.ResponseWriter, r *http.Request, body []byte, err error) {
	env := response.WriteProblem(w, err)
	mw.LogFailure(r, body, env, err)
}

// forwardTemplate builds the parts of a forward request that come from the
// inbound request itself.
func forwardTemplate(r *http.Request, id *mw.Identity) centralserver.ForwardRequest {
	reqID := middleware.GetReqID(r.Context())
	if reqID == "" {
		reqID = uuid.NewString()
	}
	return centralserver.ForwardRequest{
		Method:      r.Method,
		Credentials: centralserver.Credentials{Username: id.Username, Password: id.Password},
		ClientAddr:  clientAddr(r),
		RequestID:   reqID,
	}
}

// clientAddr is the address of the socket peer. Forwarding headers sent by
// the caller are ignored.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// objectNoun names an object type in client-facing messages.
func objectNoun(t model.ObjectType) string {
	switch t {
	case model.ObjectTypeTLD:
		return "TLDs"
	case model.ObjectTypeRegistrar:
		return "registrars"
	case model.ObjectTypeProbeNode:
		return "probe nodes"
	default:
		return string(t)
	}
}
