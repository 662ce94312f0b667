package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseObjectType(t *testing.T) {
	for _, s := range []string{"tlds", "registrars", "probeNodes", "alerts"} {
		ot, ok := ParseObjectType(s)
		assert.True(t, ok, s)
		assert.Equal(t, s, ot.String())
	}

	_, ok := ParseObjectType("probenodes")
	assert.False(t, ok, "object types are case-sensitive")
	_, ok = ParseObjectType("")
	assert.False(t, ok)
}

func TestObjectType_Groups(t *testing.T) {
	assert.Equal(t, GroupTLD, ObjectTypeTLD.Group())
	assert.Equal(t, GroupTLD, ObjectTypeRegistrar.Group())
	assert.Equal(t, GroupProbe, ObjectTypeProbeNode.Group())
	assert.Empty(t, ObjectTypeAlert.Group())
}

func TestObjectType_Sharded(t *testing.T) {
	for _, ot := range ShardedObjectTypes {
		assert.True(t, ot.Sharded(), ot)
		assert.NotEmpty(t, ot.Action(), ot)
	}
	assert.False(t, ObjectTypeAlert.Sharded())
}

func TestObjectType_SortKey(t *testing.T) {
	key, kind := ObjectTypeRegistrar.SortKey()
	assert.Equal(t, "id", key)
	assert.Equal(t, SortNumeric, kind)

	key, kind = ObjectTypeTLD.SortKey()
	assert.Equal(t, "tld", key)
	assert.Equal(t, SortString, kind)

	key, _ = ObjectTypeProbeNode.SortKey()
	assert.Equal(t, "probe", key)
}
