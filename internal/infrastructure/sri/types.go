// Package sri implementa la generación, firma y envío del XML de comprobantes
// electrónicos según la Ficha Técnica del SRI (Ecuador) v2.1.0.
package sri

import (
	"context"

	"github.com/mvinueza/contaec/internal/domain/entity"
)

// Entornos de operación del pipeline SRI.
const (
	// AppEnvDev no envía al WS del SRI: firma (si hay certificado) y simula
	// la autorización.
	AppEnvDev = "dev"
	// AppEnvTest envía al ambiente de certificación celcer.sri.gob.ec.
	AppEnvTest = "test"
	// AppEnvProd envía al ambiente de producción cel.sri.gob.ec.
	AppEnvProd = "prod"
)

// InvoiceBuildContext contexto con todos los datos necesarios para construir el XML de la factura.
type InvoiceBuildContext struct {
	Invoice *entity.Invoice
	Company *entity.Company // Emisor (infoTributaria)
	Client  *entity.Client  // Comprador (infoFactura)
	Details []*entity.InvoiceDetail

	Environment string // "1" producción, "2" pruebas (va en <ambiente>)
}

// ReceptionResult resultado de la entrega al WS de recepción del SRI.
type ReceptionResult struct {
	Estado   string // RECIBIDA o DEVUELTA
	Accepted bool   // true si estado == RECIBIDA
	Messages string // mensajes de devolución del SRI (puede ser vacío)
}

// Submitter define el puerto de salida para la entrega de comprobantes al WS SRI.
// La implementación concreta usa SOAP; para tests se puede inyectar un mock.
type Submitter interface {
	// SubmitXML envía el XML firmado al WS de recepción del SRI.
	// env debe ser "test" o "prod"; determina la URL del endpoint.
	SubmitXML(ctx context.Context, signedXML []byte, env string) (*ReceptionResult, error)
}
