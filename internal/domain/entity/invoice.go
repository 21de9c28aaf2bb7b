package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de envío al SRI (Ecuador).
const (
	SRIStatusDraft           = "DRAFT"            // Guardada para reservar ID y secuencial
	SRIStatusPending         = "PENDIENTE"        // En proceso
	SRIStatusSigned          = "FIRMADA"          // XML firmado, pendiente de envío al WS
	SRIStatusReceived        = "RECIBIDA"         // Recibida por recepción SRI, autorización pendiente
	SRIStatusAuthorized      = "AUTORIZADA"       // Autorizada por el SRI (o simulada en dev)
	SRIStatusRejected        = "DEVUELTA"         // Devuelta por el SRI con errores
	SRIStatusError           = "ERROR"            // Error genérico
	SRIStatusErrorGeneration = "ERROR_GENERACION" // Falló firma o generación XML
)

// Invoice representa la cabecera de una factura electrónica.
type Invoice struct {
	ID            string
	CompanyID     string
	ClientID      string
	Establishment string // estab (3 dígitos)
	EmissionPoint string // ptoEmi (3 dígitos)
	Sequential    string // secuencial de 9 dígitos
	Date          time.Time
	Subtotal      decimal.Decimal // total sin impuestos
	IVATotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	SRIStatus     string
	AccessKey     string // clave de acceso de 49 dígitos (módulo 11)
	XMLSigned     string // XML firmado (contenido completo)
	Authorization string // número de autorización devuelto por el SRI
	SRIErrors     string // Mensajes de devolución del SRI (JSON o texto plano)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
