package request

import (
	"regexp"
	"strings"

	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/model"
)

var (
	registrarIDRegex = regexp.MustCompile(`^[1-9][0-9]*$`)
	probeNodeRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	tldLabelRegex    = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
)

// ValidateObjectID checks the syntax of an object id for its type. It does
// no I/O and must run before any central server is contacted.
func ValidateObjectID(t model.ObjectType, id string) error {
	switch t {
	case model.ObjectTypeTLD:
		if !isValidTLD(id) {
			return core.BadRequest("Invalid TLD name %q", id)
		}
	case model.ObjectTypeRegistrar:
		if !registrarIDRegex.MatchString(id) {
			return core.BadRequest("Invalid registrar ID %q", id)
		}
	case model.ObjectTypeProbeNode:
		if !probeNodeRegex.MatchString(id) {
			return core.BadRequest("Invalid probe node name %q", id)
		}
	case model.ObjectTypeAlert:
		if id == "" {
			return core.BadRequest("Alert type is not specified")
		}
	default:
		return core.NotFound("Unknown object type %q", t)
	}
	return nil
}

// isValidTLD accepts the root "." or a single label with an optional
// trailing dot: 2-63 characters of [a-z0-9-], alphanumeric at both ends,
// and "--" at positions 3-4 only after an "xn" or "zz" prefix.
func isValidTLD(id string) bool {
	if id == "." {
		return true
	}
	label := strings.TrimSuffix(id, ".")
	if len(label) < 2 || len(label) > 63 {
		return false
	}
	if !tldLabelRegex.MatchString(label) {
		return false
	}
	if len(label) >= 4 && label[2:4] == "--" {
		prefix := label[:2]
		return prefix == "xn" || prefix == "zz"
	}
	return true
}
