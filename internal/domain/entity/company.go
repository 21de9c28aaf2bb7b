package entity

import "time"

// Company representa una organización/tenant del sistema (multi-tenant, enfoque Ecuador).
type Company struct {
	ID              string
	RazonSocial     string
	NombreComercial string
	RUC             string // RUC ecuatoriano de 13 dígitos
	Address         string
	Phone           string
	Email           string
	Establishment   string // código de establecimiento SRI (3 dígitos)
	EmissionPoint   string // punto de emisión SRI (3 dígitos)
	Status          string // active, suspended, inactive
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleBilling    = "billing"
	ModuleRetentions = "retentions"
	ModuleAccounting = "accounting"
	ModuleReports    = "reports"
)

// CompanyModule representa la activación de un módulo SaaS en una empresa.
type CompanyModule struct {
	ID          string
	CompanyID   string
	ModuleName  string // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
