package repository

import (
	"context"

	"github.com/mvinueza/contaec/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	GetByRUC(ruc string) (*entity.Company, error)
	Update(company *entity.Company) error
	List(limit, offset int) ([]*entity.Company, error)
	Delete(id string) error
	// Módulos SaaS activos por empresa.
	GetActiveModules(companyID string) ([]string, error)
	SetModuleActive(companyID, moduleName string, active bool) error
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}
