package repository

import (
	"context"
	"database/sql"

	"github.com/citimr/aid-portal/pkg/database"
)

type txKey struct{}

// TxManager implements port.TransactionManager over the SQLite connection.
// The open transaction travels in the context so repositories called inside
// fn join it transparently.
type TxManager struct {
	db *database.DB
}

// NewTxManager creates a transaction manager.
func NewTxManager(db *database.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTransaction runs fn inside a single transaction.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// executor is the subset of sql.DB/sql.Tx the repositories use.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execFrom returns the transaction carried by ctx, or the bare connection.
func execFrom(ctx context.Context, db *database.DB) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}
