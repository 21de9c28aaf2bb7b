package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único
// (23505). Los repos lo traducen a domain.ErrDuplicate (RUC de empresa,
// tax_id de cliente, email de usuario por empresa).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullIfEmpty mapea "" a NULL. Los campos SRI de la factura (clave de acceso,
// XML firmado, autorización) y las referencias opcionales de retenciones son
// NULL hasta que el pipeline los complete.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
