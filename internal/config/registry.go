package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/edvin/provisioning/internal/model"
)

var validate = validator.New()

// Registry is the static central server and credential table loaded from
// REGISTRY_FILE.
type Registry struct {
	TLDGroup   string   `yaml:"tld_group"`
	ProbeGroup string   `yaml:"probe_group"`
	AlertTypes []string `yaml:"alert_types" validate:"dive,required,excludesall=/"`
	Servers    []Server `yaml:"servers" validate:"required,min=1,dive"`
	Users      []User   `yaml:"users" validate:"required,min=1,dive"`
}

type Server struct {
	ID          int            `yaml:"id" validate:"gt=0"`
	URL         string         `yaml:"url" validate:"required,url"`
	DatabaseURL string         `yaml:"database_url" validate:"required"`
	Limits      map[string]int `yaml:"limits" validate:"dive,keys,oneof=tlds registrars probeNodes,endkeys,gte=0"`
}

type User struct {
	Username     string           `yaml:"username" validate:"required"`
	PasswordHash string           `yaml:"password_hash" validate:"required"`
	Permissions  []PermissionRule `yaml:"permissions" validate:"dive"`
}

// PermissionRule is one entry of a user's ordered permission list.
type PermissionRule struct {
	Pattern string   `yaml:"pattern" validate:"required"`
	Methods []string `yaml:"methods" validate:"required,min=1,dive,oneof=GET PUT DELETE POST"`
}

// LoadRegistry reads and parses the registry file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses and validates registry YAML from raw bytes.
func ParseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	if reg.TLDGroup == "" {
		reg.TLDGroup = "TLDs"
	}
	if reg.ProbeGroup == "" {
		reg.ProbeGroup = "Probes"
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks field constraints and cross-entry consistency.
func (r *Registry) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	seenServers := make(map[int]bool, len(r.Servers))
	for _, s := range r.Servers {
		if seenServers[s.ID] {
			return fmt.Errorf("duplicate central server id %d", s.ID)
		}
		seenServers[s.ID] = true
	}

	seenUsers := make(map[string]bool, len(r.Users))
	for _, u := range r.Users {
		if seenUsers[u.Username] {
			return fmt.Errorf("duplicate username %q", u.Username)
		}
		seenUsers[u.Username] = true
		for i, p := range u.Permissions {
			if _, err := regexp.Compile(p.Pattern); err != nil {
				return fmt.Errorf("user %q permission %d: %w", u.Username, i, err)
			}
		}
	}
	return nil
}

// Shards returns the central servers ordered by ascending id.
func (r *Registry) Shards() []model.Shard {
	shards := make([]model.Shard, 0, len(r.Servers))
	for _, s := range r.Servers {
		limits := make(map[model.ObjectType]int, len(s.Limits))
		for k, v := range s.Limits {
			limits[model.ObjectType(k)] = v
		}
		shards = append(shards, model.Shard{
			ID:          s.ID,
			URL:         s.URL,
			DatabaseURL: s.DatabaseURL,
			Limits:      limits,
		})
	}
	sort.Slice(shards, func(i, j int) bool { return shards[i].ID < shards[j].ID })
	return shards
}

// CompiledUsers returns the users with their permission patterns compiled.
// Permission order is preserved.
func (r *Registry) CompiledUsers() ([]model.User, error) {
	users := make([]model.User, 0, len(r.Users))
	for _, u := range r.Users {
		perms := make([]model.Permission, 0, len(u.Permissions))
		for i, p := range u.Permissions {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("user %q permission %d: %w", u.Username, i, err)
			}
			methods := make(map[string]bool, len(p.Methods))
			for _, m := range p.Methods {
				methods[m] = true
			}
			perms = append(perms, model.Permission{Pattern: re, Methods: methods})
		}
		users = append(users, model.User{
			Credential:  model.Credential{Username: u.Username, PasswordHash: u.PasswordHash},
			Permissions: perms,
		})
	}
	return users, nil
}

// GroupNames maps membership group keys to host group names on the central servers.
func (r *Registry) GroupNames() map[string]string {
	return map[string]string{
		model.GroupTLD:   r.TLDGroup,
		model.GroupProbe: r.ProbeGroup,
	}
}

// AlertTypeSet returns the configured alert types as a set.
func (r *Registry) AlertTypeSet() map[string]bool {
	set := make(map[string]bool, len(r.AlertTypes))
	for _, a := range r.AlertTypes {
		set[a] = true
	}
	return set
}
