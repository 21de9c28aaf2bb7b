package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mvinueza/contaec/internal/application/dto"
	"github.com/mvinueza/contaec/internal/domain"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/internal/domain/repository"
	"github.com/mvinueza/contaec/pkg/logger"
	"github.com/mvinueza/contaec/pkg/sri"
)

// ClientUseCase casos de uso para clientes (facturación).
type ClientUseCase struct {
	repo   repository.ClientRepository
	lookup ContribuyenteLookup // nil si la consulta al catastro está deshabilitada
	log    *logger.Logger
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, lookup ContribuyenteLookup, log *logger.Logger) *ClientUseCase {
	return &ClientUseCase{repo: repo, lookup: lookup, log: log}
}

// Create crea un nuevo cliente. Cédulas y RUC deben pasar el dígito
// verificador; si la razón social viene vacía y la identificación es un RUC,
// se intenta completar desde el catastro público del SRI.
func (uc *ClientUseCase) Create(ctx context.Context, companyID string, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	idType := sri.BuyerIDTypeFor(in.TaxID)
	switch idType {
	case sri.BuyerIDTypeRUC:
		if !sri.ValidateRUC(in.TaxID) {
			return nil, domain.ErrInvalidTaxID
		}
	case sri.BuyerIDTypeCedula:
		if !sri.ValidateCedula(in.TaxID) {
			return nil, domain.ErrInvalidTaxID
		}
	}

	existing, _ := uc.repo.GetByCompanyAndTaxID(companyID, in.TaxID)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	razonSocial := in.RazonSocial
	address := in.Address
	if razonSocial == "" && idType == sri.BuyerIDTypeRUC && uc.lookup != nil {
		data, err := uc.lookup.Lookup(ctx, in.TaxID)
		if err != nil {
			uc.log.Warn().Err(err).Str("ruc", in.TaxID).Msg("consulta al catastro SRI fallida")
		} else {
			razonSocial = data.RazonSocial
			if address == "" {
				address = data.Direccion
			}
		}
	}
	if razonSocial == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	client := &entity.Client{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		RazonSocial: razonSocial,
		TaxID:       in.TaxID,
		IDType:      idType,
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// List lista clientes de la empresa.
func (uc *ClientUseCase) List(companyID string, limit, offset int) ([]*dto.ClientResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

// LookupContribuyente consulta los datos públicos de un RUC en el catastro
// del SRI (con cache y límite de tasa).
func (uc *ClientUseCase) LookupContribuyente(ctx context.Context, ruc string) (*dto.ContribuyenteResponse, error) {
	if uc.lookup == nil {
		return nil, domain.ErrNotFound
	}
	data, err := uc.lookup.Lookup(ctx, ruc)
	if err != nil {
		return nil, err
	}
	return &dto.ContribuyenteResponse{
		RUC:          data.RUC,
		RazonSocial:  data.RazonSocial,
		Estado:       data.Estado,
		Direccion:    data.Direccion,
		Obligaciones: data.Obligaciones,
	}, nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:          c.ID,
		CompanyID:   c.CompanyID,
		RazonSocial: c.RazonSocial,
		TaxID:       c.TaxID,
		IDType:      c.IDType,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
	}
}
