package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	RazonSocial     string `json:"razon_social" validate:"required,min=1,max=300"`
	NombreComercial string `json:"nombre_comercial" validate:"omitempty,max=300"`
	RUC             string `json:"ruc" validate:"required,len=13"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	Email           string `json:"email" validate:"omitempty,email"`
	Establishment   string `json:"establishment" validate:"omitempty,len=3"`
	EmissionPoint   string `json:"emission_point" validate:"omitempty,len=3"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	RazonSocial     *string `json:"razon_social" validate:"omitempty,min=1,max=300"`
	NombreComercial *string `json:"nombre_comercial" validate:"omitempty,max=300"`
	Address         *string `json:"address"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Status          *string `json:"status" validate:"omitempty,oneof=active suspended inactive"`
}

// CompanyResponse salida de una empresa (sin datos sensibles).
type CompanyResponse struct {
	ID              string    `json:"id"`
	RazonSocial     string    `json:"razon_social"`
	NombreComercial string    `json:"nombre_comercial,omitempty"`
	RUC             string    `json:"ruc"`
	Address         string    `json:"address"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Establishment   string    `json:"establishment"`
	EmissionPoint   string    `json:"emission_point"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
