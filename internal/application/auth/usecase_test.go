package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvinueza/contaec/internal/application/auth"
	"github.com/mvinueza/contaec/internal/application/dto"
	"github.com/mvinueza/contaec/internal/domain"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/pkg/security"
)

// ── repos en memoria ──────────────────────────────────────────────────────────

type memUserRepo struct {
	byID    map[string]*entity.User
	byEmail map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*entity.User{}, byEmail: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByEmail(email string) (*entity.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByEmailAndCompany(email, companyID string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok || u.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) Update(u *entity.User) error { r.byID[u.ID] = u; return nil }

func (r *memUserRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.User, error) {
	return nil, nil
}

func (r *memUserRepo) Delete(id string) error { delete(r.byID, id); return nil }

type memCompanyRepo struct {
	byID map[string]*entity.Company
}

func (r *memCompanyRepo) Create(c *entity.Company) error { r.byID[c.ID] = c; return nil }

func (r *memCompanyRepo) GetByID(id string) (*entity.Company, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memCompanyRepo) GetByRUC(ruc string) (*entity.Company, error) {
	return nil, domain.ErrNotFound
}

func (r *memCompanyRepo) Update(c *entity.Company) error { return nil }

func (r *memCompanyRepo) List(limit, offset int) ([]*entity.Company, error) { return nil, nil }

func (r *memCompanyRepo) Delete(id string) error { return nil }
func (r *memCompanyRepo) GetActiveModules(companyID string) ([]string, error) {
	return []string{entity.ModuleBilling}, nil
}
func (r *memCompanyRepo) SetModuleActive(companyID, moduleName string, active bool) error {
	return nil
}
func (r *memCompanyRepo) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	return moduleName == entity.ModuleBilling, nil
}

// ── fixtures ──────────────────────────────────────────────────────────────────

const testCompanyID = "7e6a3c1e-9d0b-4f4a-8f2e-2b1c3d4e5f60"

func newUseCase(t *testing.T) (*auth.AuthUseCase, *memUserRepo) {
	t.Helper()
	users := newMemUserRepo()
	companies := &memCompanyRepo{byID: map[string]*entity.Company{
		testCompanyID: {ID: testCompanyID, RazonSocial: "Comercial Andina S.A.", RUC: "1790000002001", Status: "active"},
	}}
	tokens := security.NewTokenService([]byte("secreto-de-pruebas"))
	guard := security.NewGuard()
	return auth.NewAuthUseCase(users, companies, tokens, guard), users
}

func registerTestUser(t *testing.T, uc *auth.AuthUseCase) *dto.UserResponse {
	t.Helper()
	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email:     "contadora@empresa.ec",
		Password:  "Facturar2024!",
		CompanyID: testCompanyID,
		Name:      "Contadora",
		Role:      entity.RoleContador,
	})
	require.NoError(t, err)
	return user
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestRegisterUser(t *testing.T) {
	uc, users := newUseCase(t)
	user := registerTestUser(t, uc)

	assert.Equal(t, "contadora@empresa.ec", user.Email)
	assert.Equal(t, entity.RoleContador, user.Role)

	stored, err := users.GetByEmail("contadora@empresa.ec")
	require.NoError(t, err)
	assert.NotEqual(t, "Facturar2024!", stored.PasswordHash, "el password nunca se persiste plano")

	_, err = uc.RegisterUser(dto.RegisterRequest{
		Email:     "contadora@empresa.ec",
		Password:  "Facturar2024!",
		CompanyID: testCompanyID,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_PasswordDebil(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email:     "nuevo@empresa.ec",
		Password:  "abc",
		CompanyID: testCompanyID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_EmiteJuegoDeTokens(t *testing.T) {
	uc, _ := newUseCase(t)
	registerTestUser(t, uc)

	resp, err := uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "Facturar2024!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.TwoFactorToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "contadora@empresa.ec", resp.User.Email)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newUseCase(t)
	registerTestUser(t, uc)

	_, err := uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Usuario inexistente produce el mismo error que password incorrecto.
	_, err = uc.Login(dto.LoginRequest{Email: "nadie@empresa.ec", Password: "Facturar2024!"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_BloqueoPorFuerzaBruta(t *testing.T) {
	uc, _ := newUseCase(t)
	registerTestUser(t, uc)

	for i := 0; i < 5; i++ {
		_, err := uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "mala"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized, "intento %d", i+1)
	}

	// El sexto intento se bloquea aunque el password sea el correcto.
	_, err := uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "Facturar2024!"})
	assert.ErrorIs(t, err, domain.ErrAccountLocked)
}

func TestLogin_ExitosoLimpiaElContador(t *testing.T) {
	uc, _ := newUseCase(t)
	registerTestUser(t, uc)

	for i := 0; i < 4; i++ {
		_, _ = uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "mala"})
	}
	_, err := uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "Facturar2024!"})
	require.NoError(t, err)

	// Tras el éxito vuelven a quedar 5 intentos disponibles.
	for i := 0; i < 4; i++ {
		_, err := uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "mala"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, users := newUseCase(t)
	registerTestUser(t, uc)
	stored, _ := users.GetByEmail("contadora@empresa.ec")
	stored.Status = "suspended"

	_, err := uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "Facturar2024!"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRefresh(t *testing.T) {
	uc, _ := newUseCase(t)
	registerTestUser(t, uc)

	login, err := uc.Login(dto.LoginRequest{Email: "contadora@empresa.ec", Password: "Facturar2024!"})
	require.NoError(t, err)

	renewed, err := uc.Refresh(dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)
	assert.Equal(t, login.User.ID, renewed.User.ID)

	// Un access token no sirve como refresh token.
	_, err = uc.Refresh(dto.RefreshRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Refresh(dto.RefreshRequest{RefreshToken: "basura"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
