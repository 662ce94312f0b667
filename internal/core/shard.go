package core

import (
	"context"
	"fmt"

	"github.com/edvin/provisioning/internal/metrics"
	"github.com/edvin/provisioning/internal/model"
)

const (
	membershipQuery = `SELECT COUNT(*) FROM hosts h
		JOIN hosts_groups hg ON hg.hostid = h.hostid
		JOIN hstgrp g ON g.groupid = hg.groupid
		WHERE g.name = $1 AND h.host = $2 AND h.status IN (0, 1)`

	groupCountQuery = `SELECT COUNT(DISTINCT h.hostid) FROM hosts h
		JOIN hosts_groups hg ON hg.hostid = h.hostid
		JOIN hstgrp g ON g.groupid = hg.groupid
		WHERE g.name = $1 AND h.status IN (0, 1)`
)

// ShardSet is the read-only view of the central servers and their databases
// shared by the locator and the placement selector.
type ShardSet struct {
	shards []model.Shard
	byID   map[int]model.Shard
	dbs    map[int]DB
	groups map[string]string
}

// NewShardSet builds a ShardSet. shards must be ordered by ascending id and
// every shard must have a DB in dbs.
func NewShardSet(shards []model.Shard, dbs map[int]DB, groups map[string]string) (*ShardSet, error) {
	byID := make(map[int]model.Shard, len(shards))
	for _, s := range shards {
		if _, ok := dbs[s.ID]; !ok {
			return nil, fmt.Errorf("no database for central server %d", s.ID)
		}
		byID[s.ID] = s
	}
	return &ShardSet{shards: shards, byID: byID, dbs: dbs, groups: groups}, nil
}

// Shards returns all central servers ordered by id.
func (s *ShardSet) Shards() []model.Shard { return s.shards }

// IDs returns all central server ids in ascending order.
func (s *ShardSet) IDs() []int {
	ids := make([]int, len(s.shards))
	for i, sh := range s.shards {
		ids[i] = sh.ID
	}
	return ids
}

// Get returns the central server with the given id.
func (s *ShardSet) Get(id int) (model.Shard, bool) {
	sh, ok := s.byID[id]
	return sh, ok
}

func (s *ShardSet) groupName(t model.ObjectType) (string, error) {
	name, ok := s.groups[t.Group()]
	if !ok || name == "" {
		return "", fmt.Errorf("no host group configured for %s", t)
	}
	return name, nil
}

func (s *ShardSet) hasMember(ctx context.Context, shardID int, group, id string) (bool, error) {
	var n int
	err := s.dbs[shardID].QueryRow(ctx, membershipQuery, group, id).Scan(&n)
	metrics.ObserveShardQuery(shardID, "membership", err)
	if err != nil {
		return false, fmt.Errorf("look up %q on central server %d: %w", id, shardID, err)
	}
	return n > 0, nil
}

func (s *ShardSet) count(ctx context.Context, shardID int, group string) (int, error) {
	var n int
	err := s.dbs[shardID].QueryRow(ctx, groupCountQuery, group).Scan(&n)
	metrics.ObserveShardQuery(shardID, "count", err)
	if err != nil {
		return 0, fmt.Errorf("count %q on central server %d: %w", group, shardID, err)
	}
	return n, nil
}
