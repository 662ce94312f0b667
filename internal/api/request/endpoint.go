package request

import (
	"strings"

	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/model"
)

// Endpoint is a parsed provisioning URL: /{objectType} or /{objectType}/{objectId}.
type Endpoint struct {
	Type  model.ObjectType
	ID    string
	HasID bool
}

// Path is the normalized endpoint path that permission patterns match against.
func (e Endpoint) Path() string {
	if e.HasID {
		return string(e.Type) + "/" + e.ID
	}
	return string(e.Type)
}

// ParseEndpoint parses the part of the URL path after the endpoint base.
// A query string is a client error; unknown object types and extra path
// segments are not found.
func ParseEndpoint(rest string, hasQuery bool) (Endpoint, error) {
	if hasQuery {
		return Endpoint{}, core.BadRequest("Query string is not allowed")
	}

	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return Endpoint{}, core.NotFound("Object type is not specified")
	}

	segments := strings.Split(rest, "/")
	if len(segments) > 2 {
		return Endpoint{}, core.NotFound("Unknown endpoint %q", "/"+rest)
	}

	t, ok := model.ParseObjectType(segments[0])
	if !ok {
		return Endpoint{}, core.NotFound("Unknown object type %q", segments[0])
	}

	ep := Endpoint{Type: t}
	if len(segments) == 2 {
		if segments[1] == "" {
			return Endpoint{}, core.NotFound("Unknown endpoint %q", "/"+rest)
		}
		ep.ID = segments[1]
		ep.HasID = true
		if err := ValidateObjectID(t, ep.ID); err != nil {
			return Endpoint{}, err
		}
	}
	return ep, nil
}
