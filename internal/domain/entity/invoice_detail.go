package entity

import "github.com/shopspring/decimal"

// InvoiceDetail representa una línea de detalle de una factura.
type InvoiceDetail struct {
	ID          string
	InvoiceID   string
	Code        string // código principal del bien o servicio
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	IVARate     decimal.Decimal // tarifa de IVA del ítem (0, 5, 15)
	Subtotal    decimal.Decimal // cantidad * precio - descuento, sin impuestos
}
