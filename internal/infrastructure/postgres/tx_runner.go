package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvinueza/contaec/internal/application/billing"
	"github.com/mvinueza/contaec/internal/domain/repository"
)

// Ensure TxRunner implements billing.BillingTxRunner.
var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia una transacción con los repos de facturación y retenciones,
// ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
	retentionRepo repository.RetentionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	clientRepo := NewClientRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)
	retentionRepo := NewRetentionRepository(tx)

	if err := fn(clientRepo, invoiceRepo, retentionRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
