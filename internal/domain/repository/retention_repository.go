package repository

import "github.com/mvinueza/contaec/internal/domain/entity"

// RetentionRepository define el puerto de persistencia para Retention.
type RetentionRepository interface {
	Create(retention *entity.Retention) error
	GetByID(id string) (*entity.Retention, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Retention, error)
	ListByInvoice(invoiceID string) ([]*entity.Retention, error)
	Delete(id string) error
}
