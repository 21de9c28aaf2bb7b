package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mvinueza/contaec/internal/application/dto"
	"github.com/mvinueza/contaec/internal/domain"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/internal/domain/repository"
	"github.com/mvinueza/contaec/pkg/sri"
)

// RetentionUseCase calcula y persiste retenciones de renta e IVA según las
// tablas vigentes en Ecuador.
type RetentionUseCase struct {
	txRunner      BillingTxRunner
	retentionRepo repository.RetentionRepository
	invoiceRepo   repository.InvoiceRepository
}

// NewRetentionUseCase construye el caso de uso.
func NewRetentionUseCase(
	txRunner BillingTxRunner,
	retentionRepo repository.RetentionRepository,
	invoiceRepo repository.InvoiceRepository,
) *RetentionUseCase {
	return &RetentionUseCase{
		txRunner:      txRunner,
		retentionRepo: retentionRepo,
		invoiceRepo:   invoiceRepo,
	}
}

// Calculate calcula la retención sin persistirla (simulador del formulario).
// Concepto desconocido cae al default del tipo; el aplicado se devuelve en
// la respuesta.
func (uc *RetentionUseCase) Calculate(in dto.CalculateRetentionRequest) (*dto.RetentionResponse, error) {
	result, err := sri.CalculateRetention(in.BaseAmount, in.TaxType, in.Concept)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &dto.RetentionResponse{
		InvoiceID:  in.InvoiceID,
		ClientID:   in.ClientID,
		TaxType:    in.TaxType,
		Concept:    result.Concept,
		BaseAmount: in.BaseAmount,
		Percentage: result.Percentage,
		Amount:     result.Amount,
		LegalBase:  result.LegalBase,
	}, nil
}

// Register calcula y persiste la retención. Si referencia una factura, esta
// debe existir y pertenecer a la empresa.
func (uc *RetentionUseCase) Register(ctx context.Context, companyID string, in dto.CalculateRetentionRequest) (*dto.RetentionResponse, error) {
	result, err := sri.CalculateRetention(in.BaseAmount, in.TaxType, in.Concept)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	clientID := in.ClientID
	if in.InvoiceID != "" {
		inv, err := uc.invoiceRepo.GetByID(in.InvoiceID)
		if err != nil || inv == nil {
			return nil, domain.ErrNotFound
		}
		if inv.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		if clientID == "" {
			clientID = inv.ClientID
		}
	}

	now := time.Now()
	ret := &entity.Retention{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		InvoiceID:  in.InvoiceID,
		ClientID:   clientID,
		TaxType:    in.TaxType,
		Concept:    result.Concept,
		BaseAmount: in.BaseAmount,
		Percentage: result.Percentage,
		Amount:     result.Amount,
		LegalBase:  result.LegalBase,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.ClientRepository,
		_ repository.InvoiceRepository,
		retentionRepo repository.RetentionRepository,
	) error {
		return retentionRepo.Create(ret)
	})
	if err != nil {
		return nil, err
	}

	return &dto.RetentionResponse{
		ID:         ret.ID,
		InvoiceID:  ret.InvoiceID,
		ClientID:   ret.ClientID,
		TaxType:    ret.TaxType,
		Concept:    ret.Concept,
		BaseAmount: ret.BaseAmount,
		Percentage: ret.Percentage,
		Amount:     ret.Amount,
		LegalBase:  ret.LegalBase,
	}, nil
}

// List lista retenciones de la empresa.
func (uc *RetentionUseCase) List(companyID string, limit, offset int) ([]*dto.RetentionResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.retentionRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.RetentionResponse, 0, len(list))
	for _, r := range list {
		out = append(out, &dto.RetentionResponse{
			ID:         r.ID,
			InvoiceID:  r.InvoiceID,
			ClientID:   r.ClientID,
			TaxType:    r.TaxType,
			Concept:    r.Concept,
			BaseAmount: r.BaseAmount,
			Percentage: r.Percentage,
			Amount:     r.Amount,
			LegalBase:  r.LegalBase,
		})
	}
	return out, nil
}
