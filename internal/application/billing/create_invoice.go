package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvinueza/contaec/internal/application/dto"
	"github.com/mvinueza/contaec/internal/domain"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/internal/domain/repository"
	domainsri "github.com/mvinueza/contaec/internal/domain/sri"
	"github.com/mvinueza/contaec/pkg/sri"
)

// InvoiceUseCase crea facturas electrónicas y las deja listas para el
// pipeline SRI (clave de acceso, XML, firma y envío en background).
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	clientRepo  repository.ClientRepository
	companyRepo repository.CompanyRepository
	invoiceRepo repository.InvoiceRepository
	processor   VoucherProcessor
	environment string // "1" producción, "2" pruebas
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	clientRepo repository.ClientRepository,
	companyRepo repository.CompanyRepository,
	invoiceRepo repository.InvoiceRepository,
	processor VoucherProcessor,
	environment string,
) *InvoiceUseCase {
	if environment == "" {
		environment = sri.EnvironmentPruebas
	}
	return &InvoiceUseCase{
		txRunner:    txRunner,
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
		invoiceRepo: invoiceRepo,
		processor:   processor,
		environment: environment,
	}
}

// CreateInvoice crea la factura: calcula totales, reserva el secuencial de la
// serie, genera la clave de acceso de 49 dígitos y persiste cabecera y
// detalles en estado DRAFT dentro de una transacción. Al confirmar, dispara
// el procesamiento SRI en background y responde de inmediato.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, companyID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ClientID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil || client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, domain.ErrNotFound
	}
	if !sri.ValidateRUC(company.RUC) {
		return nil, fmt.Errorf("%w: el RUC del emisor no pasa el dígito verificador", domain.ErrInvalidTaxID)
	}

	now := time.Now()
	invoiceID := uuid.New().String()

	// Totales y detalles fuera de la tx (cálculo puro).
	var subtotal, ivaTotal decimal.Decimal
	cien := decimal.NewFromInt(100)
	details := make([]*entity.InvoiceDetail, 0, len(in.Items))
	for i := range in.Items {
		item := &in.Items[i]
		if item.Description == "" || !item.Quantity.GreaterThan(decimal.Zero) || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if item.Discount.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		lineSubtotal := item.Quantity.Mul(item.UnitPrice).Sub(item.Discount).Round(2)
		if lineSubtotal.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		lineIVA := lineSubtotal.Mul(item.IVARate).Div(cien).Round(2)
		subtotal = subtotal.Add(lineSubtotal)
		ivaTotal = ivaTotal.Add(lineIVA)
		details = append(details, &entity.InvoiceDetail{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			Code:        item.Code,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			IVARate:     item.IVARate,
			Subtotal:    lineSubtotal,
		})
	}
	subtotal = subtotal.Round(2)
	grandTotal := subtotal.Add(ivaTotal).Round(2)

	establishment := company.Establishment
	if establishment == "" {
		establishment = sri.DefaultEstablishment
	}
	emissionPoint := company.EmissionPoint
	if emissionPoint == "" {
		emissionPoint = sri.DefaultEmissionPoint
	}

	inv := &entity.Invoice{
		ID:            invoiceID,
		CompanyID:     companyID,
		ClientID:      client.ID,
		Establishment: establishment,
		EmissionPoint: emissionPoint,
		Date:          now,
		Subtotal:      subtotal,
		IVATotal:      ivaTotal,
		GrandTotal:    grandTotal,
		SRIStatus:     entity.SRIStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := domainsri.ValidateInvoice(inv, details, client.IDType, client.TaxID); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.ClientRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.RetentionRepository,
	) error {
		// Secuencial y clave de acceso dentro de la tx: la reserva del
		// secuencial y la factura se confirman juntas o ninguna.
		sequential, err := invoiceRepo.NextSequential(companyID, establishment, emissionPoint)
		if err != nil {
			return fmt.Errorf("reservar secuencial: %w", err)
		}
		inv.Sequential = sequential

		accessKey, err := sri.GenerateAccessKey(sri.AccessKeyParams{
			EmissionDate: now,
			VoucherType:  sri.VoucherTypeFactura,
			IssuerRUC:    company.RUC,
			Environment:  uc.environment,
			Series:       establishment + emissionPoint,
			Sequential:   sequential,
		})
		if err != nil {
			return fmt.Errorf("generar clave de acceso: %w", err)
		}
		inv.AccessKey = accessKey

		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}
		for _, detail := range details {
			if err := invoiceRepo.CreateDetail(detail); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// La respuesta no espera al SRI: el pipeline corre en background y el
	// frontend hace polling sobre /invoices/:id/status.
	if uc.processor != nil {
		uc.processor.ProcessAsync(inv.ID)
	}

	return uc.toResponse(inv, client.RazonSocial, details), nil
}

// GetInvoice obtiene una factura por ID con su detalle completo.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	clientName := ""
	if client, _ := uc.clientRepo.GetByID(inv.ClientID); client != nil {
		clientName = client.RazonSocial
	}
	return uc.toResponse(inv, clientName, details), nil
}

// GetSRIStatus devuelve el estado SRI de la factura (endpoint de polling).
func (uc *InvoiceUseCase) GetSRIStatus(ctx context.Context, companyID, id string) (*dto.InvoiceSRIStatusDTO, error) {
	inv, err := uc.invoiceRepo.GetSRIStatus(id)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return &dto.InvoiceSRIStatusDTO{
		ID:            inv.ID,
		SRIStatus:     inv.SRIStatus,
		AccessKey:     inv.AccessKey,
		Authorization: inv.Authorization,
		Errors:        inv.SRIErrors,
	}, nil
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice, clientName string, details []*entity.InvoiceDetail) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		CompanyID:     inv.CompanyID,
		ClientID:      inv.ClientID,
		ClientName:    clientName,
		Establishment: inv.Establishment,
		EmissionPoint: inv.EmissionPoint,
		Sequential:    inv.Sequential,
		Date:          inv.Date.Format("2006-01-02"),
		Subtotal:      inv.Subtotal,
		IVATotal:      inv.IVATotal,
		GrandTotal:    inv.GrandTotal,
		SRIStatus:     inv.SRIStatus,
		AccessKey:     inv.AccessKey,
		Authorization: inv.Authorization,
		Details:       make([]dto.InvoiceDetailResponse, 0, len(details)),
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.InvoiceDetailResponse{
			ID:          d.ID,
			Code:        d.Code,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			Discount:    d.Discount,
			IVARate:     d.IVARate,
			Subtotal:    d.Subtotal,
		})
	}
	return resp
}
