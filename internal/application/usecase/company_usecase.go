package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/mvinueza/contaec/internal/application/dto"
	"github.com/mvinueza/contaec/internal/domain"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/internal/domain/repository"
	"github.com/mvinueza/contaec/pkg/sri"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crea una nueva empresa. El RUC debe pasar el dígito verificador.
// Devuelve domain.ErrDuplicate si el RUC ya existe.
func (uc *CompanyUseCase) Create(in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if !sri.ValidateRUC(in.RUC) {
		return nil, domain.ErrInvalidTaxID
	}
	existing, _ := uc.repo.GetByRUC(in.RUC)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	establishment := in.Establishment
	if establishment == "" {
		establishment = sri.DefaultEstablishment
	}
	emissionPoint := in.EmissionPoint
	if emissionPoint == "" {
		emissionPoint = sri.DefaultEmissionPoint
	}
	now := time.Now()
	company := &entity.Company{
		ID:              uuid.New().String(),
		RazonSocial:     in.RazonSocial,
		NombreComercial: in.NombreComercial,
		RUC:             in.RUC,
		Address:         in.Address,
		Phone:           in.Phone,
		Email:           in.Email,
		Establishment:   establishment,
		EmissionPoint:   emissionPoint,
		Status:          "active",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// GetActiveModules lista los módulos SaaS activos de la empresa.
func (uc *CompanyUseCase) GetActiveModules(companyID string) ([]string, error) {
	return uc.repo.GetActiveModules(companyID)
}

// SetModuleActive activa o desactiva un módulo SaaS de la empresa.
func (uc *CompanyUseCase) SetModuleActive(companyID, moduleName string, active bool) error {
	switch moduleName {
	case entity.ModuleBilling, entity.ModuleRetentions, entity.ModuleAccounting, entity.ModuleReports:
	default:
		return domain.ErrInvalidInput
	}
	return uc.repo.SetModuleActive(companyID, moduleName, active)
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:              c.ID,
		RazonSocial:     c.RazonSocial,
		NombreComercial: c.NombreComercial,
		RUC:             c.RUC,
		Address:         c.Address,
		Phone:           c.Phone,
		Email:           c.Email,
		Establishment:   c.Establishment,
		EmissionPoint:   c.EmissionPoint,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
