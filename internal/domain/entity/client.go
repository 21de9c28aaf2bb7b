package entity

import "time"

// Client representa un cliente de la empresa (facturación y retenciones).
type Client struct {
	ID          string
	CompanyID   string
	RazonSocial string
	TaxID       string // RUC, cédula o pasaporte
	IDType      string // catálogo SRI: 04 RUC, 05 cédula, 06 pasaporte, 07 consumidor final
	Email       string
	Phone       string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
