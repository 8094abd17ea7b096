// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// TxController defines methods for controlling a database transaction.
// *sqlx.Tx implicitly implements this interface.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner defines the interface for beginning transactions.
// SQLXBeginner adapts *sqlx.DB; the memory store implements it directly.
type DBTxBeginner interface {
	BeginTxController(ctx context.Context, opts *sql.TxOptions) (TxController, error)
}

// SQLXBeginner starts *sqlx.Tx transactions on a connection pool.
type SQLXBeginner struct {
	DB *sqlx.DB
}

// BeginTxController implements DBTxBeginner.
func (b SQLXBeginner) BeginTxController(ctx context.Context, opts *sql.TxOptions) (TxController, error) {
	tx, err := b.DB.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// BeginTxFunc starts a transaction on the given beginner.
type BeginTxFunc func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)

// CommitTxFunc commits a transaction.
type CommitTxFunc func(tx TxController) error

// RollbackTxFunc rolls a transaction back. It is meant to be deferred.
type RollbackTxFunc func(tx TxController)

// Transactor bundles a transaction source with the functions used to drive it.
// Services receive one so tests can swap every piece independently.
type Transactor struct {
	Beginner DBTxBeginner
	Begin    BeginTxFunc
	Commit   CommitTxFunc
	Rollback RollbackTxFunc
}

// NewTransactor returns a Transactor backed by the package-level helpers.
func NewTransactor(beginner DBTxBeginner) Transactor {
	return Transactor{
		Beginner: beginner,
		Begin:    BeginTx,
		Commit:   CommitTx,
		Rollback: RollbackTx,
	}
}

// BeginTx starts a new database transaction.
// For Postgres the returned controller is a *sqlx.Tx.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
	return dbConn.BeginTxController(ctx, nil)
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.WithError(err).Error("Error rolling back transaction")
	}
}
