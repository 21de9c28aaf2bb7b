package billing

import (
	"context"

	"github.com/mvinueza/contaec/internal/domain/repository"
	infrasri "github.com/mvinueza/contaec/internal/infrastructure/sri"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye
// los repos de facturación y retenciones.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		clientRepo repository.ClientRepository,
		invoiceRepo repository.InvoiceRepository,
		retentionRepo repository.RetentionRepository,
	) error) error
}

// ContribuyenteLookup puerto de consulta del catastro público del SRI.
// Best-effort: los casos de uso continúan sin el dato si la consulta falla.
type ContribuyenteLookup interface {
	Lookup(ctx context.Context, ruc string) (*infrasri.ContribuyenteData, error)
}

// VoucherProcessor dispara el pipeline SRI (clave de acceso, XML, firma,
// envío) para una factura ya persistida. La implementación procesa en
// background; el HTTP handler responde de inmediato con estado PENDIENTE.
type VoucherProcessor interface {
	ProcessAsync(invoiceID string)
}
