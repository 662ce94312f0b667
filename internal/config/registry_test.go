package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/provisioning/internal/model"
)

const sampleRegistry = `
alert_types: [rdds, epp]
servers:
  - id: 2
    url: https://cs2.example.com/provisioning.php
    database_url: postgres://gw@cs2-db/zabbix
    limits: {tlds: 100, registrars: 50, probeNodes: 10}
  - id: 1
    url: https://cs1.example.com/provisioning.php
    database_url: postgres://gw@cs1-db/zabbix
    limits: {tlds: 100}
users:
  - username: console
    password_hash: "$2a$10$abcdefghijklmnopqrstuu"
    permissions:
      - pattern: "^tlds$"
        methods: [GET]
      - pattern: "^.*$"
        methods: [GET, PUT, DELETE]
`

func TestParseRegistry_Valid(t *testing.T) {
	reg, err := ParseRegistry([]byte(sampleRegistry))
	require.NoError(t, err)

	assert.Equal(t, "TLDs", reg.TLDGroup)
	assert.Equal(t, "Probes", reg.ProbeGroup)
	assert.Equal(t, map[string]bool{"rdds": true, "epp": true}, reg.AlertTypeSet())

	shards := reg.Shards()
	require.Len(t, shards, 2)
	assert.Equal(t, 1, shards[0].ID, "shards are ordered by id")
	assert.Equal(t, 2, shards[1].ID)
	assert.Equal(t, 100, shards[0].Limit(model.ObjectTypeTLD))
	assert.Equal(t, 0, shards[0].Limit(model.ObjectTypeProbeNode))
	assert.Equal(t, 50, shards[1].Limit(model.ObjectTypeRegistrar))
}

func TestParseRegistry_GroupOverrides(t *testing.T) {
	reg, err := ParseRegistry([]byte("tld_group: Registries\nprobe_group: Nodes\n" + sampleRegistry))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		model.GroupTLD:   "Registries",
		model.GroupProbe: "Nodes",
	}, reg.GroupNames())
}

func TestRegistry_CompiledUsersKeepOrder(t *testing.T) {
	reg, err := ParseRegistry([]byte(sampleRegistry))
	require.NoError(t, err)

	users, err := reg.CompiledUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Len(t, users[0].Permissions, 2)

	first := users[0].Permissions[0]
	assert.Equal(t, "^tlds$", first.Pattern.String())
	assert.True(t, first.Allows("GET"))
	assert.False(t, first.Allows("PUT"))
	assert.True(t, users[0].Permissions[1].Allows("DELETE"))
}

func TestParseRegistry_InvalidYAML(t *testing.T) {
	_, err := ParseRegistry([]byte("servers: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse registry")
}

func TestParseRegistry_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "no servers",
			yaml: "users: [{username: a, password_hash: x, permissions: []}]",
			want: "validation error",
		},
		{
			name: "bad url",
			yaml: `
servers: [{id: 1, url: "not a url", database_url: "postgres://x"}]
users: [{username: a, password_hash: x}]`,
			want: "validation error",
		},
		{
			name: "zero id",
			yaml: `
servers: [{id: 0, url: "https://cs", database_url: "postgres://x"}]
users: [{username: a, password_hash: x}]`,
			want: "validation error",
		},
		{
			name: "unknown limit key",
			yaml: `
servers: [{id: 1, url: "https://cs", database_url: "postgres://x", limits: {alerts: 3}}]
users: [{username: a, password_hash: x}]`,
			want: "validation error",
		},
		{
			name: "unknown method",
			yaml: `
servers: [{id: 1, url: "https://cs", database_url: "postgres://x"}]
users: [{username: a, password_hash: x, permissions: [{pattern: ".*", methods: [PATCH]}]}]`,
			want: "validation error",
		},
		{
			name: "alert type with path separator",
			yaml: `
alert_types: [../etc/passwd]
servers: [{id: 1, url: "https://cs", database_url: "postgres://x"}]
users: [{username: a, password_hash: x}]`,
			want: "validation error",
		},
		{
			name: "duplicate server id",
			yaml: `
servers:
  - {id: 1, url: "https://cs1", database_url: "postgres://x"}
  - {id: 1, url: "https://cs2", database_url: "postgres://y"}
users: [{username: a, password_hash: x}]`,
			want: "duplicate central server id 1",
		},
		{
			name: "duplicate username",
			yaml: `
servers: [{id: 1, url: "https://cs", database_url: "postgres://x"}]
users:
  - {username: a, password_hash: x}
  - {username: a, password_hash: y}`,
			want: `duplicate username "a"`,
		},
		{
			name: "bad pattern",
			yaml: `
servers: [{id: 1, url: "https://cs", database_url: "postgres://x"}]
users: [{username: a, password_hash: x, permissions: [{pattern: "(", methods: [GET]}]}]`,
			want: `user "a" permission 0`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRegistry_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRegistry), 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Servers, 2)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry("/nonexistent/registry.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read registry")
}
