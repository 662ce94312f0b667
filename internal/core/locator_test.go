package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/provisioning/internal/model"
)

func TestLocate_NotFound(t *testing.T) {
	set, mocks := newTestShardSet(t, 2, 10)
	expectMembership(mocks[1], "TLDs", "example", 0)
	expectMembership(mocks[2], "TLDs", "example", 0)

	_, found, err := NewLocatorService(set).Locate(context.Background(), model.ObjectTypeTLD, "example")
	require.NoError(t, err)
	assert.False(t, found)
	mocks[1].AssertExpectations(t)
	mocks[2].AssertExpectations(t)
}

func TestLocate_SingleOwner(t *testing.T) {
	set, mocks := newTestShardSet(t, 3, 10)
	expectMembership(mocks[1], "Probes", "node-1", 0)
	expectMembership(mocks[2], "Probes", "node-1", 1)
	expectMembership(mocks[3], "Probes", "node-1", 0)

	id, found, err := NewLocatorService(set).Locate(context.Background(), model.ObjectTypeProbeNode, "node-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, id)
}

func TestLocate_RegistrarUsesTLDGroup(t *testing.T) {
	set, mocks := newTestShardSet(t, 1, 10)
	expectMembership(mocks[1], "TLDs", "1234", 1)

	id, found, err := NewLocatorService(set).Locate(context.Background(), model.ObjectTypeRegistrar, "1234")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, id)
}

func TestLocate_MultipleShards(t *testing.T) {
	set, mocks := newTestShardSet(t, 3, 10)
	expectMembership(mocks[1], "TLDs", "example", 1)
	expectMembership(mocks[2], "TLDs", "example", 0)
	expectMembership(mocks[3], "TLDs", "example", 1)

	_, found, err := NewLocatorService(set).Locate(context.Background(), model.ObjectTypeTLD, "example")
	require.Error(t, err)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrMultipleShards)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindInternal, cerr.Kind)
	assert.Equal(t, map[string]any{"centralServers": []int{1, 3}}, cerr.Details)
}

func TestLocate_DBError(t *testing.T) {
	set, mocks := newTestShardSet(t, 2, 10)
	expectMembership(mocks[1], "TLDs", "example", 0)
	mocks[2].On("QueryRow", mock.Anything, membershipQuery, mock.Anything).Return(errRow("connection refused"))

	_, _, err := NewLocatorService(set).Locate(context.Background(), model.ObjectTypeTLD, "example")
	require.Error(t, err)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindInternal, cerr.Kind)
	assert.Contains(t, err.Error(), "central server 2")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLocate_Idempotent(t *testing.T) {
	set, mocks := newTestShardSet(t, 2, 10)
	expectMembership(mocks[1], "TLDs", "example", 0)
	expectMembership(mocks[2], "TLDs", "example", 1)

	locator := NewLocatorService(set)
	for i := 0; i < 3; i++ {
		id, found, err := locator.Locate(context.Background(), model.ObjectTypeTLD, "example")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 2, id)
	}
}
