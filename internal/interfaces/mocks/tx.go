package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx - упрощенная заглушка pgx.Tx для тестов сервисного слоя.
// Запросы через нее не выполняются, фиксируются только Commit/Rollback.
type Tx struct {
	Committed  bool
	RolledBack bool
	CommitErr  error
}

var _ pgx.Tx = (*Tx)(nil)

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *Tx) Commit(ctx context.Context) error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *Tx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (t *Tx) Conn() *pgx.Conn { return nil }

// TxStarter отдает одну и ту же заглушку транзакции.
type TxStarter struct {
	Tx       *Tx
	BeginErr error
}

func (s *TxStarter) Begin(ctx context.Context) (pgx.Tx, error) {
	if s.BeginErr != nil {
		return nil, s.BeginErr
	}
	if s.Tx == nil {
		s.Tx = &Tx{}
	}
	return s.Tx, nil
}
