package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvin/provisioning/internal/model"
)

// NewShardPool opens a read-only pool to one central server database.
func NewShardPool(ctx context.Context, shard model.Shard) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(shard.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse central server %d db config: %w", shard.ID, err)
	}
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	cfg.ConnConfig.RuntimeParams["application_name"] = "provisioning-gateway"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create central server %d db pool: %w", shard.ID, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping central server %d db: %w", shard.ID, err)
	}

	return pool, nil
}

// NewShardPools opens one pool per central server. On failure every pool
// opened so far is closed.
func NewShardPools(ctx context.Context, shards []model.Shard) (map[int]*pgxpool.Pool, error) {
	pools := make(map[int]*pgxpool.Pool, len(shards))
	for _, s := range shards {
		pool, err := NewShardPool(ctx, s)
		if err != nil {
			ClosePools(pools)
			return nil, err
		}
		pools[s.ID] = pool
	}
	return pools, nil
}

// ClosePools closes every pool in the map.
func ClosePools(pools map[int]*pgxpool.Pool) {
	for _, p := range pools {
		p.Close()
	}
}
