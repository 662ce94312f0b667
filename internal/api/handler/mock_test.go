package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// handlerMockDB implements core.DB for handler tests.
type handlerMockDB struct {
	mock.Mock
}

func (m *handlerMockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

type handlerMockRow struct {
	n   int
	err error
}

func (r handlerMockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.n
	return nil
}

var (
	isMembershipQuery = mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, "h.host = $2") })
	isCountQuery      = mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, "COUNT(DISTINCT") })
)

// holds makes the database report whether id is present.
func (m *handlerMockDB) holds(id string, present bool) {
	n := 0
	if present {
		n = 1
	}
	m.On("QueryRow", mock.Anything, isMembershipQuery, mock.MatchedBy(func(args []any) bool {
		return len(args) == 2 && args[1] == id
	})).Return(handlerMockRow{n: n})
}

func (m *handlerMockDB) counts(n int) {
	m.On("QueryRow", mock.Anything, isCountQuery, mock.Anything).Return(handlerMockRow{n: n})
}

func (m *handlerMockDB) fails(msg string) {
	m.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(handlerMockRow{err: errors.New(msg)})
}
