package repository

import "github.com/mvinueza/contaec/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para Invoice y detalles.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateDetail(detail *entity.InvoiceDetail) error
	// Update actualiza todos los campos SRI de la factura:
	// clave_acceso, xml_signed, sri_status, authorization, sri_errors.
	Update(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	GetByAccessKey(accessKey string) (*entity.Invoice, error)
	GetDetailsByInvoiceID(invoiceID string) ([]*entity.InvoiceDetail, error)
	// GetSRIStatus devuelve solo los campos de estado SRI (ligero, para polling).
	GetSRIStatus(id string) (*entity.Invoice, error)
	// NextSequential reserva el siguiente secuencial de la serie de la empresa.
	NextSequential(companyID, establishment, emissionPoint string) (string, error)
}
