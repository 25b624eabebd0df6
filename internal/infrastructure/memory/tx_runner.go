package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción de escritura de memdb.
// memdb admite un solo escritor a la vez, así que las operaciones del ledger se serializan.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run abre la transacción, ejecuta fn con repos atados a ella y confirma solo si fn no falla.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	levelRepo repository.StockLevelRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := r.store.db.Txn(true)
	defer txn.Abort()

	sc := scope{db: r.store.db, txn: txn}
	if err := fn(ctx, &StockLevelRepo{s: sc}, &StockAdjustmentRepo{s: sc}, &StockTransferRepo{s: sc}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
