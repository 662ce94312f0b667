package core

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/provisioning/internal/model"
)

// LocatorService finds the central server that owns an object.
type LocatorService struct {
	set *ShardSet
}

func NewLocatorService(set *ShardSet) *LocatorService {
	return &LocatorService{set: set}
}

// Locate asks every central server database whether it holds id. It returns
// found=false when no server has it and an internal error wrapping
// ErrMultipleShards when more than one does.
func (s *LocatorService) Locate(ctx context.Context, t model.ObjectType, id string) (int, bool, error) {
	group, err := s.set.groupName(t)
	if err != nil {
		return 0, false, Internal(err, "Configuration error")
	}

	shards := s.set.Shards()
	present := make([]bool, len(shards))
	g, gctx := errgroup.WithContext(ctx)

	for i, sh := range shards {
		g.Go(func() error {
			ok, err := s.set.hasMember(gctx, sh.ID, group, id)
			if err != nil {
				return err
			}
			present[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, false, Internal(err, "Failed to query central server database")
	}

	var owners []int
	for i, ok := range present {
		if ok {
			owners = append(owners, shards[i].ID)
		}
	}

	switch len(owners) {
	case 0:
		return 0, false, nil
	case 1:
		return owners[0], true, nil
	default:
		e := Internal(ErrMultipleShards, "Object %q exists on multiple central servers", id)
		e.Details = map[string]any{"centralServers": owners}
		return 0, false, e
	}
}
