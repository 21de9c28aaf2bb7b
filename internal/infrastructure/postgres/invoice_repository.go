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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, company_id, client_id, establishment, emission_point, sequential, date, subtotal, iva_total, grand_total, sri_status, access_key, xml_signed, authorization, sri_errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.CompanyID, invoice.ClientID,
		invoice.Establishment, invoice.EmissionPoint, invoice.Sequential,
		invoice.Date, invoice.Subtotal, invoice.IVATotal, invoice.GrandTotal,
		invoice.SRIStatus, nullIfEmpty(invoice.AccessKey), nullIfEmpty(invoice.XMLSigned),
		nullIfEmpty(invoice.Authorization), nullIfEmpty(invoice.SRIErrors),
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice sequential already exists: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(detail *entity.InvoiceDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_details (id, invoice_id, code, description, quantity, unit_price, discount, iva_rate, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		detail.ID, detail.InvoiceID, nullIfEmpty(detail.Code), detail.Description,
		detail.Quantity, detail.UnitPrice, detail.Discount, detail.IVARate, detail.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice detail: %w", err)
	}
	return nil
}

// Update actualiza todos los campos SRI de la factura.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET access_key    = COALESCE($2, access_key),
		    xml_signed    = COALESCE($3, xml_signed),
		    sri_status    = $4,
		    authorization = COALESCE($5, authorization),
		    sri_errors    = $6,
		    updated_at    = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID,
		nullIfEmpty(invoice.AccessKey),
		nullIfEmpty(invoice.XMLSigned),
		invoice.SRIStatus,
		nullIfEmpty(invoice.Authorization),
		invoice.SRIErrors,
		invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

const invoiceSelect = `
	SELECT id, company_id, client_id, establishment, emission_point, sequential, date,
	       subtotal, iva_total, grand_total, sri_status,
	       COALESCE(access_key, ''), COALESCE(xml_signed, ''), COALESCE(authorization, ''), COALESCE(sri_errors, ''),
	       created_at, updated_at
	FROM invoices`

// GetByID obtiene una factura completa por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	return r.scanOne(r.q.QueryRow(context.Background(), invoiceSelect+` WHERE id = $1`, id))
}

// GetByAccessKey obtiene una factura por su clave de acceso de 49 dígitos.
func (r *InvoiceRepo) GetByAccessKey(accessKey string) (*entity.Invoice, error) {
	return r.scanOne(r.q.QueryRow(context.Background(), invoiceSelect+` WHERE access_key = $1`, accessKey))
}

func (r *InvoiceRepo) scanOne(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.ClientID,
		&inv.Establishment, &inv.EmissionPoint, &inv.Sequential,
		&inv.Date, &inv.Subtotal, &inv.IVATotal, &inv.GrandTotal,
		&inv.SRIStatus, &inv.AccessKey, &inv.XMLSigned, &inv.Authorization, &inv.SRIErrors,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetSRIStatus devuelve solo los campos de estado SRI (consulta ligera para polling).
func (r *InvoiceRepo) GetSRIStatus(id string) (*entity.Invoice, error) {
	const query = `
		SELECT id, company_id, sri_status,
		       COALESCE(access_key, ''), COALESCE(authorization, ''), COALESCE(sri_errors, '')
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.CompanyID, &inv.SRIStatus,
		&inv.AccessKey, &inv.Authorization, &inv.SRIErrors,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice sri status: %w", err)
	}
	return &inv, nil
}

// GetDetailsByInvoiceID obtiene todas las líneas de una factura.
func (r *InvoiceRepo) GetDetailsByInvoiceID(invoiceID string) ([]*entity.InvoiceDetail, error) {
	query := `
		SELECT id, invoice_id, COALESCE(code, ''), description, quantity, unit_price, discount, iva_rate, subtotal
		FROM invoice_details WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice details: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.Code, &d.Description, &d.Quantity, &d.UnitPrice, &d.Discount, &d.IVARate, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// NextSequential reserva el siguiente secuencial de la serie (estab + ptoEmi)
// de la empresa. Upsert atómico: dos facturas concurrentes de la misma serie
// nunca obtienen el mismo número.
func (r *InvoiceRepo) NextSequential(companyID, establishment, emissionPoint string) (string, error) {
	const query = `
		INSERT INTO invoice_sequences (company_id, establishment, emission_point, last_sequential)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, establishment, emission_point)
		DO UPDATE SET last_sequential = invoice_sequences.last_sequential + 1
		RETURNING last_sequential`
	var seq int64
	err := r.q.QueryRow(context.Background(), query, companyID, establishment, emissionPoint).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next sequential: %w", err)
	}
	return fmt.Sprintf("%09d", seq), nil
}
