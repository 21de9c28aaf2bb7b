package dto

import "github.com/shopspring/decimal"

// CreateClientRequest body para POST /api/clients.
type CreateClientRequest struct {
	RazonSocial string `json:"razon_social"`
	TaxID       string `json:"tax_id"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	RazonSocial string `json:"razon_social"`
	TaxID       string `json:"tax_id"`
	IDType      string `json:"id_type"` // catálogo SRI tabla 6
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	ClientID string               `json:"client_id"`
	Items    []InvoiceItemRequest `json:"items"`
}

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount,omitempty"`
	IVARate     decimal.Decimal `json:"iva_rate"` // 0, 5 o 15
}

// InvoiceResponse factura con detalle para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID            string                  `json:"id"`
	CompanyID     string                  `json:"company_id"`
	ClientID      string                  `json:"client_id"`
	ClientName    string                  `json:"client_name,omitempty"`
	Establishment string                  `json:"establishment"`
	EmissionPoint string                  `json:"emission_point"`
	Sequential    string                  `json:"sequential"`
	Date          string                  `json:"date"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
	IVATotal      decimal.Decimal         `json:"iva_total"`
	GrandTotal    decimal.Decimal         `json:"grand_total"`
	SRIStatus     string                  `json:"sri_status"`
	AccessKey     string                  `json:"access_key,omitempty"`
	Authorization string                  `json:"authorization,omitempty"`
	Details       []InvoiceDetailResponse `json:"details"`
}

// InvoiceDetailResponse línea de detalle en la respuesta.
type InvoiceDetailResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	IVARate     decimal.Decimal `json:"iva_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceSRIStatusDTO respuesta ligera para el endpoint de polling
// GET /api/invoices/:id/status.
// El frontend consulta este endpoint periódicamente hasta que sri_status sea
// "AUTORIZADA" o "DEVUELTA".
type InvoiceSRIStatusDTO struct {
	ID            string `json:"id"`
	SRIStatus     string `json:"sri_status"` // DRAFT|FIRMADA|RECIBIDA|AUTORIZADA|DEVUELTA|ERROR_GENERACION
	AccessKey     string `json:"access_key"` // clave de acceso de 49 dígitos
	Authorization string `json:"authorization,omitempty"`
	Errors        string `json:"errors"` // Mensajes de devolución del SRI (vacío si OK)
}

// CalculateRetentionRequest body para POST /api/retentions/calculate.
type CalculateRetentionRequest struct {
	InvoiceID  string          `json:"invoice_id,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
	TaxType    string          `json:"tax_type"` // renta | iva
	Concept    string          `json:"concept"`
	BaseAmount decimal.Decimal `json:"base_amount"`
}

// RetentionResponse retención calculada o persistida.
type RetentionResponse struct {
	ID         string          `json:"id,omitempty"`
	InvoiceID  string          `json:"invoice_id,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
	TaxType    string          `json:"tax_type"`
	Concept    string          `json:"concept"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	LegalBase  string          `json:"legal_base"`
}

// ContribuyenteResponse datos públicos de un contribuyente consultados al SRI.
type ContribuyenteResponse struct {
	RUC          string   `json:"ruc"`
	RazonSocial  string   `json:"razon_social"`
	Estado       string   `json:"estado"`
	Direccion    string   `json:"direccion,omitempty"`
	Obligaciones []string `json:"obligaciones,omitempty"`
}
