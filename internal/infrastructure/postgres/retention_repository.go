package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/internal/domain/repository"
)

var _ repository.RetentionRepository = (*RetentionRepo)(nil)

// RetentionRepo implementación de RetentionRepository (usable con pool o tx).
type RetentionRepo struct {
	q Querier
}

// NewRetentionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRetentionRepository(q Querier) *RetentionRepo {
	return &RetentionRepo{q: q}
}

// Create persiste una retención calculada.
func (r *RetentionRepo) Create(retention *entity.Retention) error {
	if retention.ID == "" {
		retention.ID = uuid.New().String()
	}
	query := `
		INSERT INTO retentions (id, company_id, invoice_id, client_id, tax_type, concept, base_amount, percentage, amount, legal_base, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		retention.ID, retention.CompanyID, nullIfEmpty(retention.InvoiceID), nullIfEmpty(retention.ClientID),
		retention.TaxType, retention.Concept, retention.BaseAmount, retention.Percentage,
		retention.Amount, retention.LegalBase,
		retention.CreatedAt, retention.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert retention: %w", err)
	}
	return nil
}

const retentionSelect = `
	SELECT id, company_id, COALESCE(invoice_id, ''), COALESCE(client_id, ''), tax_type, concept,
	       base_amount, percentage, amount, legal_base, created_at, updated_at
	FROM retentions`

// GetByID obtiene una retención por ID.
func (r *RetentionRepo) GetByID(id string) (*entity.Retention, error) {
	var ret entity.Retention
	err := r.q.QueryRow(context.Background(), retentionSelect+` WHERE id = $1`, id).Scan(
		&ret.ID, &ret.CompanyID, &ret.InvoiceID, &ret.ClientID, &ret.TaxType, &ret.Concept,
		&ret.BaseAmount, &ret.Percentage, &ret.Amount, &ret.LegalBase,
		&ret.CreatedAt, &ret.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get retention: %w", err)
	}
	return &ret, nil
}

// ListByCompany lista retenciones de la empresa con paginación.
func (r *RetentionRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Retention, error) {
	query := retentionSelect + ` WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list retentions: %w", err)
	}
	defer rows.Close()
	return scanRetentions(rows)
}

// ListByInvoice lista las retenciones asociadas a una factura.
func (r *RetentionRepo) ListByInvoice(invoiceID string) ([]*entity.Retention, error) {
	query := retentionSelect + ` WHERE invoice_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list retentions by invoice: %w", err)
	}
	defer rows.Close()
	return scanRetentions(rows)
}

func scanRetentions(rows pgx.Rows) ([]*entity.Retention, error) {
	var list []*entity.Retention
	for rows.Next() {
		var ret entity.Retention
		if err := rows.Scan(&ret.ID, &ret.CompanyID, &ret.InvoiceID, &ret.ClientID, &ret.TaxType, &ret.Concept, &ret.BaseAmount, &ret.Percentage, &ret.Amount, &ret.LegalBase, &ret.CreatedAt, &ret.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan retention: %w", err)
		}
		list = append(list, &ret)
	}
	return list, rows.Err()
}

// Delete elimina una retención por ID.
func (r *RetentionRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM retentions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete retention: %w", err)
	}
	return nil
}
