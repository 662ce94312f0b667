package handler

import (
	"net/http"

	"github.com/edvin/provisioning/internal/api/request"
	"github.com/edvin/provisioning/internal/api/response"
	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/model"
)

// Alert handles POST /alerts/{alertType}.
type Alert struct {
	svc *core.AlertService
}

func NewAlert(svc *core.AlertService) *Alert {
	return &Alert{svc: svc}
}

// Submit appends the alert value to the log for its type and answers with
// an OK envelope.
func (h *Alert) Submit(w http.ResponseWriter, ep request.Endpoint, body []byte) error {
	if !ep.HasID {
		return core.BadRequest("Alert type is not specified")
	}
	if !h.svc.Known(ep.ID) {
		return core.BadRequest("Unknown alert type %q", ep.ID)
	}
	if len(body) == 0 {
		return core.BadRequest("Invalid JSON: empty body")
	}

	payload, err := request.DecodeAlert(body)
	if err != nil {
		return err
	}
	if err := h.svc.Append(ep.ID, *payload.Value); err != nil {
		return core.Internal(err, "Failed to record alert")
	}

	response.WriteEnvelope(w, model.NewEnvelope(model.ResultOK, "Alert recorded"))
	return nil
}
