package sri

import "github.com/shopspring/decimal"

// =============================================================================
// Tabla 3 - Tipos de comprobante (Ficha Técnica SRI - codDoc)
// =============================================================================

const (
	VoucherTypeFactura      = "01" // Factura
	VoucherTypeNotaCredito  = "04" // Nota de crédito
	VoucherTypeNotaDebito   = "05" // Nota de débito
	VoucherTypeGuiaRemision = "06" // Guía de remisión
	VoucherTypeRetencion    = "07" // Comprobante de retención
)

// ValidVoucherTypeCodes códigos de comprobante aceptados por el emisor.
var ValidVoucherTypeCodes = map[string]bool{
	VoucherTypeFactura: true, VoucherTypeNotaCredito: true,
	VoucherTypeNotaDebito: true, VoucherTypeGuiaRemision: true,
	VoucherTypeRetencion: true,
}

// =============================================================================
// Tabla 4 - Ambiente y tipo de emisión
// =============================================================================

const (
	EnvironmentProduccion = "1"
	EnvironmentPruebas    = "2"

	EmissionTypeNormal = "1"
)

// =============================================================================
// Tabla 6 - Tipos de identificación del comprador
// =============================================================================

const (
	BuyerIDTypeRUC             = "04" // RUC (13 dígitos)
	BuyerIDTypeCedula          = "05" // Cédula (10 dígitos)
	BuyerIDTypePasaporte       = "06" // Pasaporte
	BuyerIDTypeConsumidorFinal = "07" // Consumidor final (9999999999999)
)

// BuyerIDTypeFor deduce el tipo de identificación del comprador a partir de la
// forma del identificador, como lo hace el formulario de clientes.
func BuyerIDTypeFor(taxID string) string {
	switch {
	case len(taxID) == 13 && allDigits(taxID):
		return BuyerIDTypeRUC
	case len(taxID) == 10 && allDigits(taxID):
		return BuyerIDTypeCedula
	default:
		return BuyerIDTypePasaporte
	}
}

// =============================================================================
// Tabla 16/17 - IVA: código de impuesto y códigos de porcentaje
// =============================================================================

const (
	TaxCodeIVA = "2" // IVA dentro de totalConImpuestos/impuestos

	// Código de porcentaje vigente para la tarifa general.
	IVAPercentageCodeGeneral = "2"
)

// Tarifas de IVA Ecuador (porcentajes vigentes 2024).
var (
	IVARateGeneral  = decimal.NewFromFloat(15.0)
	IVARateReducido = decimal.NewFromFloat(5.0)
	IVARateCero     = decimal.Zero
)

// =============================================================================
// Serie por defecto (establecimiento y punto de emisión matriz)
// =============================================================================

const (
	DefaultEstablishment = "001"
	DefaultEmissionPoint = "001"
)
