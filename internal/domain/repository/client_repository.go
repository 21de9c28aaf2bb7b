package repository

import "github.com/mvinueza/contaec/internal/domain/entity"

// ClientRepository define el puerto de persistencia para Client (facturación).
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	GetByCompanyAndTaxID(companyID, taxID string) (*entity.Client, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Client, error)
	Update(client *entity.Client) error
	Delete(id string) error
}
