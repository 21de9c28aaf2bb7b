package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Retention representa una retención calculada sobre un comprobante.
type Retention struct {
	ID         string
	CompanyID  string
	InvoiceID  string // comprobante sobre el que se retiene (opcional)
	ClientID   string
	TaxType    string          // renta | iva
	Concept    string          // concepto efectivamente aplicado
	BaseAmount decimal.Decimal // base imponible
	Percentage decimal.Decimal
	Amount     decimal.Decimal // base * porcentaje / 100, 2 decimales
	LegalBase  string          // p. ej. "Art. 45 LORTI"
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
