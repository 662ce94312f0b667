package core

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of *pgxpool.Pool used by the services. Central server
// databases are only read.
type DB interface {
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}
