package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// ---------- Mock DB ----------

// mockDB implements the DB interface for testing.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// ---------- Mock Row ----------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

// intRow returns a row whose single column scans as n.
func intRow(n int) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*int)) = n
		return nil
	}}
}

// errRow returns a row whose Scan fails with msg.
func errRow(msg string) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		return errors.New(msg)
	}}
}
