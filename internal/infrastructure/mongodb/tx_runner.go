package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción multi-documento de MongoDB.
// No usa Session.WithTransaction: un conflicto de escritura se devuelve al llamador sin reintentos.
type TxRunner struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewTxRunner(client *mongo.Client, db *mongo.Database) *TxRunner {
	return &TxRunner{client: client, db: db}
}

// Run abre sesión y transacción (snapshot, majority), ejecuta fn con el SessionContext y confirma.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	levelRepo repository.StockLevelRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := sess.StartTransaction(txnOpts); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sess.AbortTransaction(context.WithoutCancel(ctx))
		}
	}()

	sc := mongo.NewSessionContext(ctx, sess)
	if err := fn(sc, NewStockLevelRepository(r.db), NewStockAdjustmentRepository(r.db), NewStockTransferRepository(r.db)); err != nil {
		return asConflict(err)
	}
	if err := sess.CommitTransaction(sc); err != nil {
		return asConflict(fmt.Errorf("commit transaction: %w", err))
	}
	committed = true
	return nil
}

// asConflict marca los errores transitorios de transacción (WriteConflict) como domain.ErrConflict.
func asConflict(err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorLabel("TransientTransactionError") {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return err
}
