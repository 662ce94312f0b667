package model

// ObjectType is the first path segment of a provisioning endpoint.
type ObjectType string

const (
	ObjectTypeTLD       ObjectType = "tlds"
	ObjectTypeRegistrar ObjectType = "registrars"
	ObjectTypeProbeNode ObjectType = "probeNodes"
	ObjectTypeAlert     ObjectType = "alerts"
)

// Membership groups on the central servers. TLDs and registrars share one.
const (
	GroupTLD   = "tld"
	GroupProbe = "probe"
)

// SortKind tells the broadcast merge how to compare sort key values.
type SortKind int

const (
	SortString SortKind = iota
	SortNumeric
)

type objectTypeInfo struct {
	action   string
	group    string
	sortKey  string
	sortKind SortKind
	sharded  bool
}

var objectTypes = map[ObjectType]objectTypeInfo{
	ObjectTypeTLD:       {action: "tlds", group: GroupTLD, sortKey: "tld", sortKind: SortString, sharded: true},
	ObjectTypeRegistrar: {action: "registrars", group: GroupTLD, sortKey: "id", sortKind: SortNumeric, sharded: true},
	ObjectTypeProbeNode: {action: "probeNodes", group: GroupProbe, sortKey: "probe", sortKind: SortString, sharded: true},
	ObjectTypeAlert:     {},
}

// ShardedObjectTypes lists the object types stored on central servers, in a fixed order.
var ShardedObjectTypes = []ObjectType{ObjectTypeTLD, ObjectTypeRegistrar, ObjectTypeProbeNode}

// ParseObjectType returns the object type for a path segment.
func ParseObjectType(s string) (ObjectType, bool) {
	t := ObjectType(s)
	_, ok := objectTypes[t]
	return t, ok
}

// Sharded reports whether objects of this type live on central servers.
func (t ObjectType) Sharded() bool { return objectTypes[t].sharded }

// Action is the value of the "action" query parameter on a central server.
func (t ObjectType) Action() string { return objectTypes[t].action }

// Group is the membership group key used for shard lookups and counts.
func (t ObjectType) Group() string { return objectTypes[t].group }

// SortKey returns the object field the merged list is ordered by.
func (t ObjectType) SortKey() (string, SortKind) {
	info := objectTypes[t]
	return info.sortKey, info.sortKind
}

func (t ObjectType) String() string { return string(t) }
