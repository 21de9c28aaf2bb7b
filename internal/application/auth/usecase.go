package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mvinueza/contaec/internal/application/dto"
	"github.com/mvinueza/contaec/internal/domain"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/internal/domain/repository"
	"github.com/mvinueza/contaec/pkg/security"
)

// AuthUseCase casos de uso de autenticación: registro, login y refresh.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	tokens      *security.TokenService
	guard       *security.Guard
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	tokens *security.TokenService,
	guard *security.Guard,
) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, companyRepo: companyRepo, tokens: tokens, guard: guard}
}

// RegisterUser crea un usuario: valida la fortaleza del password, lo hashea
// con scrypt y persiste. Devuelve ErrEmailAlreadyExists si el email ya existe
// en esa company.
func (uc *AuthUseCase) RegisterUser(in dto.RegisterRequest) (*dto.UserResponse, error) {
	existing, _ := uc.userRepo.GetByEmailAndCompany(in.Email, in.CompanyID)
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companyRepo.GetByID(in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound // empresa no existe
	}
	if err := security.ValidatePasswordStrength(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = in.Email
	}
	role := in.Role
	if role == "" {
		role = entity.RoleVendedor
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		Email:        in.Email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password tras pasar el guard de fuerza bruta y emite
// el juego completo de tokens. Cada llamada cuenta como intento; un login
// exitoso limpia el contador.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	attempt := uc.guard.CheckBruteForceAttempt(in.Email)
	if !attempt.Allowed {
		return nil, fmt.Errorf("%w: reintente en %d segundos",
			domain.ErrAccountLocked, int(attempt.LockoutTime.Seconds()))
	}

	user, err := uc.userRepo.GetByEmail(in.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := security.VerifyPassword(in.Password, user.PasswordHash); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}

	uc.guard.ClearBruteForceAttempts(in.Email)
	set, err := uc.tokens.IssueTokenSet(security.Claims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		Role:      user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:    set.AccessToken,
		RefreshToken:   set.RefreshToken,
		TwoFactorToken: set.TwoFactorToken,
		ExpiresIn:      set.ExpiresIn,
		User:           *toUserResponse(user),
	}, nil
}

// Refresh verifica un refresh token vigente y emite un juego nuevo de tokens
// con los datos actuales del usuario.
func (uc *AuthUseCase) Refresh(in dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims, err := uc.tokens.Verify(in.RefreshToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if claims.Type != security.TokenTypeRefresh {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(claims.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if user == nil || user.Status != "active" {
		return nil, domain.ErrUnauthorized
	}
	set, err := uc.tokens.IssueTokenSet(security.Claims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		Role:      user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  set.AccessToken,
		RefreshToken: set.RefreshToken,
		ExpiresIn:    set.ExpiresIn,
		User:         *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
