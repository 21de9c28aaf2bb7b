package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(company *entity.Company) error {
	query := `
		INSERT INTO companies (id, razon_social, nombre_comercial, ruc, address, phone, email, establishment, emission_point, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.pool.Exec(context.Background(), query,
		company.ID, company.RazonSocial, company.NombreComercial, company.RUC,
		company.Address, company.Phone, company.Email,
		company.Establishment, company.EmissionPoint, company.Status,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

const companySelect = `
	SELECT id, razon_social, nombre_comercial, ruc, address, phone, email, establishment, emission_point, status, created_at, updated_at
	FROM companies`

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.scanOne(r.pool.QueryRow(context.Background(), companySelect+` WHERE id = $1`, id))
}

// GetByRUC obtiene una empresa por RUC.
func (r *CompanyRepo) GetByRUC(ruc string) (*entity.Company, error) {
	return r.scanOne(r.pool.QueryRow(context.Background(), companySelect+` WHERE ruc = $1`, ruc))
}

func (r *CompanyRepo) scanOne(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.RazonSocial, &c.NombreComercial, &c.RUC, &c.Address,
		&c.Phone, &c.Email, &c.Establishment, &c.EmissionPoint, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// Update actualiza una empresa existente.
func (r *CompanyRepo) Update(company *entity.Company) error {
	query := `
		UPDATE companies SET razon_social = $2, nombre_comercial = $3, ruc = $4, address = $5, phone = $6, email = $7, establishment = $8, emission_point = $9, status = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.pool.Exec(context.Background(), query,
		company.ID, company.RazonSocial, company.NombreComercial, company.RUC,
		company.Address, company.Phone, company.Email,
		company.Establishment, company.EmissionPoint, company.Status, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// List devuelve empresas con paginación.
func (r *CompanyRepo) List(limit, offset int) ([]*entity.Company, error) {
	rows, err := r.pool.Query(context.Background(), companySelect+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.RazonSocial, &c.NombreComercial, &c.RUC, &c.Address, &c.Phone, &c.Email, &c.Establishment, &c.EmissionPoint, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Delete elimina una empresa por ID.
func (r *CompanyRepo) Delete(id string) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	return nil
}

// GetActiveModules lista los módulos SaaS activos y sin vencer de la empresa.
func (r *CompanyRepo) GetActiveModules(companyID string) ([]string, error) {
	const query = `
		SELECT module_name FROM company_modules
		 WHERE company_id = $1
		   AND is_active  = true
		   AND (expires_at IS NULL OR expires_at > now())
		 ORDER BY module_name`
	rows, err := r.pool.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list active modules: %w", err)
	}
	defer rows.Close()

	var modules []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, name)
	}
	return modules, rows.Err()
}

// SetModuleActive activa o desactiva un módulo SaaS para la empresa (upsert).
func (r *CompanyRepo) SetModuleActive(companyID, moduleName string, active bool) error {
	const query = `
		INSERT INTO company_modules (id, company_id, module_name, is_active, activated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now(), now())
		ON CONFLICT (company_id, module_name)
		DO UPDATE SET is_active = EXCLUDED.is_active, updated_at = now()`
	_, err := r.pool.Exec(context.Background(), query, uuid.New().String(), companyID, moduleName, active)
	if err != nil {
		return fmt.Errorf("set module %s: %w", moduleName, err)
	}
	return nil
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
// Consulta directamente company_modules para una respuesta O(1) vía índice.
func (r *CompanyRepo) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM company_modules
			 WHERE company_id  = $1
			   AND module_name = $2
			   AND is_active   = true
			   AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.pool.QueryRow(ctx, query, companyID, moduleName).Scan(&active); err != nil {
		return false, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return active, nil
}
