package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/provisioning/internal/model"
)

// PlacementService chooses a central server for a new object.
type PlacementService struct {
	set *ShardSet
}

func NewPlacementService(set *ShardSet) *PlacementService {
	return &PlacementService{set: set}
}

// Select returns the candidate with the fewest objects of type t. Ties go
// to the candidate that comes first in candidates, so callers pass ids in
// ascending order for a reproducible choice. This is a plain greedy balancer.
//
// When the chosen candidate is already at its limit the error wraps a
// *CapacityError.
func (s *PlacementService) Select(ctx context.Context, candidates []int, t model.ObjectType) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("select central server: no candidates")
	}
	for _, id := range candidates {
		if _, ok := s.set.Get(id); !ok {
			return 0, fmt.Errorf("select central server %d: %w", id, ErrUnknownShard)
		}
	}

	group, err := s.set.groupName(t)
	if err != nil {
		return 0, err
	}

	counts := make([]int, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range candidates {
		g.Go(func() error {
			n, err := s.set.count(gctx, id, group)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("select central server: %w", err)
	}

	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] < counts[best] {
			best = i
		}
	}

	shard, _ := s.set.Get(candidates[best])
	if limit := shard.Limit(t); counts[best] >= limit {
		return 0, &CapacityError{ObjectType: t, ShardID: shard.ID, Count: counts[best], Limit: limit}
	}
	return shard.ID, nil
}
