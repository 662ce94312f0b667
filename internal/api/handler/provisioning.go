package handler

import (
	"errors"
	"net/http"
	"strings"

	mw "github.com/edvin/provisioning/internal/api/middleware"
	"github.com/edvin/provisioning/internal/api/request"
	"github.com/edvin/provisioning/internal/api/response"
	"github.com/edvin/provisioning/internal/centralserver"
	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/model"
)

// Provisioning routes authenticated requests under the endpoint base to
// the central servers.
type Provisioning struct {
	base      string
	auth      *core.AuthService
	shards    *core.ShardSet
	locator   *core.LocatorService
	placement *core.PlacementService
	client    *centralserver.Client
	alert     *Alert
}

func NewProvisioning(
	base string,
	auth *core.AuthService,
	shards *core.ShardSet,
	locator *core.LocatorService,
	placement *core.PlacementService,
	client *centralserver.Client,
	alert *Alert,
) *Provisioning {
	return &Provisioning{
		base:      base,
		auth:      auth,
		shards:    shards,
		locator:   locator,
		placement: placement,
		client:    client,
		alert:     alert,
	}
}

// ServeHTTP expects BasicAuth to have run. It parses the endpoint, checks
// the caller's permissions and dispatches on method and object type.
func (h *Provisioning) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := mw.BufferBody(r)
	identity := mw.GetIdentity(r.Context())
	if identity == nil {
		fail(w, r, body, core.ErrNoUsername)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, h.base)
	ep, err := request.ParseEndpoint(rest, r.URL.RawQuery != "" || r.URL.ForceQuery)
	if err != nil {
		fail(w, r, body, err)
		return
	}

	info := mw.GetRequestInfo(r.Context())
	info.ObjectType = string(ep.Type)
	info.ObjectID = ep.ID

	if err := h.auth.Authorize(identity.Username, r.Method, ep.Path()); err != nil {
		fail(w, r, body, err)
		return
	}

	if len(body) > mw.MaxBodyBytes {
		fail(w, r, body[:mw.MaxBodyBytes], core.BadRequest("Request body is too large"))
		return
	}

	if err := h.dispatch(w, r, ep, identity, body); err != nil {
		fail(w, r, body, err)
	}
}

func (h *Provisioning) dispatch(w http.ResponseWriter, r *http.Request, ep request.Endpoint, id *mw.Identity, body []byte) error {
	if ep.Type == model.ObjectTypeAlert {
		if r.Method != http.MethodPost {
			return core.MethodNotAllowed("Method %s is not allowed on %s", r.Method, ep.Type)
		}
		return h.alert.Submit(w, ep, body)
	}

	switch r.Method {
	case http.MethodGet:
		if !ep.HasID {
			return h.list(w, r, ep, id)
		}
		return h.forwardExisting(w, r, ep, id, nil)
	case http.MethodDelete:
		if !ep.HasID {
			return core.BadRequest("Object ID is not specified")
		}
		return h.forwardExisting(w, r, ep, id, nil)
	case http.MethodPut:
		if !ep.HasID {
			return core.BadRequest("Object ID is not specified")
		}
		return h.put(w, r, ep, id, body)
	default:
		return core.MethodNotAllowed("Method %s is not allowed on %s", r.Method, ep.Type)
	}
}

func (h *Provisioning) list(w http.ResponseWriter, r *http.Request, ep request.Endpoint, id *mw.Identity) error {
	objs, err := h.client.Broadcast(r.Context(), ep.Type, forwardTemplate(r, id))
	if err != nil {
		return core.Internal(err, "Failed to list %s", objectNoun(ep.Type))
	}
	response.WriteJSON(w, http.StatusOK, objs)
	return nil
}

// forwardExisting forwards to the central server that already holds the object.
func (h *Provisioning) forwardExisting(w http.ResponseWriter, r *http.Request, ep request.Endpoint, id *mw.Identity, body []byte) error {
	owner, found, err := h.locator.Locate(r.Context(), ep.Type, ep.ID)
	if err != nil {
		return err
	}
	if !found {
		return core.NotFound("Object %q does not exist", ep.ID)
	}
	return h.forward(w, r, ep, id, owner, body)
}

func (h *Provisioning) put(w http.ResponseWriter, r *http.Request, ep request.Endpoint, id *mw.Identity, body []byte) error {
	if len(body) == 0 {
		return core.BadRequest("Invalid JSON: empty body")
	}
	payload, err := request.ParsePutPayload(body)
	if err != nil {
		return err
	}

	target, err := h.resolveTarget(r, ep, payload.CentralServer)
	if err != nil {
		return err
	}
	return h.forward(w, r, ep, id, target, payload.Body)
}

// resolveTarget picks the central server for a PUT: the existing owner, the
// explicitly requested server, or the least loaded one.
func (h *Provisioning) resolveTarget(r *http.Request, ep request.Endpoint, requested *int) (int, error) {
	if requested != nil {
		if _, ok := h.shards.Get(*requested); !ok {
			return 0, core.BadRequest("Central server %d does not exist", *requested)
		}
	}

	owner, found, err := h.locator.Locate(r.Context(), ep.Type, ep.ID)
	if err != nil {
		return 0, err
	}
	if found {
		if requested != nil && *requested != owner {
			return 0, core.BadRequest("Object %q already exists on central server %d", ep.ID, owner)
		}
		return owner, nil
	}

	candidates := h.shards.IDs()
	if requested != nil {
		candidates = []int{*requested}
	}
	selected, err := h.placement.Select(r.Context(), candidates, ep.Type)
	if err == nil {
		return selected, nil
	}

	var capErr *core.CapacityError
	if errors.As(err, &capErr) {
		if requested != nil {
			return 0, core.Internal(err, "Central server %d has reached the maximum number of %s", *requested, objectNoun(ep.Type))
		}
		return 0, core.Internal(err, "All central servers have reached the maximum number of %s", objectNoun(ep.Type))
	}
	return 0, core.Internal(err, "Failed to query central server database")
}

func (h *Provisioning) forward(w http.ResponseWriter, r *http.Request, ep request.Endpoint, id *mw.Identity, shardID int, body []byte) error {
	mw.GetRequestInfo(r.Context()).CentralServer = shardID
	fr := forwardTemplate(r, id)
	fr.ShardID = shardID
	fr.Type = ep.Type
	fr.ID = ep.ID
	if r.Method == http.MethodPut {
		fr.Body = body
	}

	resp, err := h.client.Forward(r.Context(), fr)
	if err != nil {
		return core.Internal(err, "Request to central server %d failed", shardID)
	}
	response.WriteJSON(w, resp.Status, resp.Body.Value())
	if resp.Status != http.StatusOK {
		mw.LogFailure(r, body, envelopeOf(resp), errors.New("central server returned an error response"))
	}
	return nil
}

// envelopeOf is used only for logging passed-through error responses.
func envelopeOf(resp *centralserver.Response) model.Envelope {
	code := model.ResultCode(resp.Status)
	env := model.NewEnvelope(code, "")
	if desc, ok := resp.Body.Object["description"].(string); ok {
		env.Description = desc
	}
	env.Details = resp.Body.Object["details"]
	return env
}
