package dto

// PageResponse metadatos de página en los listados (clientes, facturas,
// retenciones, empresas).
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable para el frontend
// (VALIDATION, INVALID_TAX_ID, DUPLICATE, RATE_LIMITED, ...); Message es
// legible para humanos.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
