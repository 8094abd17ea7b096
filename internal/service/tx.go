// internal/service/tx.go
package service

import (
	"context"
	"fmt"

	"coinquest/internal/repository"
	"coinquest/pkg/db"
)

// beginTx starts a transaction and exposes it as a DBExecutor for the repositories.
// Callers must defer t.Rollback on the returned controller.
func beginTx(ctx context.Context, t db.Transactor, op string) (db.TxController, repository.DBExecutor, error) {
	txController, err := t.Begin(ctx, t.Beginner)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		t.Rollback(txController)
		return nil, nil, fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}
	return txController, txExecutor, nil
}
