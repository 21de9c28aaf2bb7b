package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Tipos de token emitidos por el servicio. El tipo viaja en el payload y
// distingue la vigencia y el uso de cada token.
const (
	TokenTypeAccess    = "access"
	TokenTypeRefresh   = "refresh"
	TokenTypeTwoFactor = "2fa"
)

// Vigencias por tipo de token.
const (
	accessTokenTTL    = time.Hour
	refreshTokenTTL   = 7 * 24 * time.Hour
	twoFactorTokenTTL = 5 * time.Minute
)

// minNonceHexLen longitud mínima del nonce en caracteres hexadecimales.
// Los tokens propios llevan 32; el mínimo aceptado en verificación es 16.
const minNonceHexLen = 16

// Razones de rechazo de un token. Son internas para diagnóstico: los
// handlers HTTP las colapsan a un 401 genérico hacia afuera.
var (
	ErrTokenMalformed   = errors.New("security: token mal formado")
	ErrTokenSignature   = errors.New("security: firma del token inválida")
	ErrTokenExpired     = errors.New("security: token expirado")
	ErrTokenNotYetValid = errors.New("security: token aún no es válido")
	ErrTokenNonce       = errors.New("security: nonce ausente o demasiado corto")
)

// tokenHeader cabecera fija de todos los tokens emitidos.
var tokenHeader = mustEncodeSegment(map[string]string{"alg": "HS256", "typ": "JWT"})

// Claims payload de un token. Los campos de identidad los llena el caso de
// uso de autenticación; iat/exp/nonce/type los llena el servicio al emitir.
type Claims struct {
	UserID    string `json:"sub"`
	CompanyID string `json:"company_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Type      string `json:"type"`
	Nonce     string `json:"nonce"`
	Code      string `json:"code,omitempty"` // solo tokens 2FA: código de 6 dígitos
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// TokenSet juego completo de tokens emitido en un login exitoso.
// TwoFactorCode repite el código embebido en el token 2FA para que el caso
// de uso lo entregue por el canal secundario.
type TokenSet struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	TwoFactorToken string `json:"two_factor_token"`
	TwoFactorCode  string `json:"-"`
	ExpiresIn      int64  `json:"expires_in"` // segundos de vigencia del access token
}

// TokenService firma y verifica tokens compactos HS256 de tres segmentos:
// base64url(header).base64url(payload).base64url(HMAC-SHA256(secret, h.p)).
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService construye el servicio con el secreto HMAC de la aplicación.
func NewTokenService(secret []byte) *TokenService {
	return NewTokenServiceWithClock(secret, time.Now)
}

// NewTokenServiceWithClock permite inyectar el reloj en pruebas de expiración.
func NewTokenServiceWithClock(secret []byte, now func() time.Time) *TokenService {
	return &TokenService{secret: secret, now: now}
}

// IssueTokenSet emite access (1h), refresh (7d) y 2FA (5min, con código de
// 6 dígitos), cada uno con su propio nonce aleatorio de 32 caracteres hex.
func (s *TokenService) IssueTokenSet(base Claims) (*TokenSet, error) {
	access, err := s.issue(base, TokenTypeAccess, accessTokenTTL, "")
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(base, TokenTypeRefresh, refreshTokenTTL, "")
	if err != nil {
		return nil, err
	}
	code, err := randomTwoFactorCode()
	if err != nil {
		return nil, err
	}
	twoFactor, err := s.issue(base, TokenTypeTwoFactor, twoFactorTokenTTL, code)
	if err != nil {
		return nil, err
	}
	return &TokenSet{
		AccessToken:    access,
		RefreshToken:   refresh,
		TwoFactorToken: twoFactor,
		TwoFactorCode:  code,
		ExpiresIn:      int64(accessTokenTTL.Seconds()),
	}, nil
}

// Verify recalcula la firma sobre los dos primeros segmentos y la compara en
// tiempo constante antes de confiar en el payload. Luego valida exp > now,
// iat <= now y el nonce. Cada chequeo fallido retorna su razón propia.
func (s *TokenService) Verify(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: se esperaban 3 segmentos, hay %d", ErrTokenMalformed, len(parts))
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: firma no es base64url", ErrTokenMalformed)
	}
	if !hmac.Equal(signature, s.sign(parts[0]+"."+parts[1])) {
		return nil, ErrTokenSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload no es base64url", ErrTokenMalformed)
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload no es JSON válido", ErrTokenMalformed)
	}

	now := s.now().Unix()
	if claims.ExpiresAt <= now {
		return nil, ErrTokenExpired
	}
	if claims.IssuedAt > now {
		return nil, ErrTokenNotYetValid
	}
	if len(claims.Nonce) < minNonceHexLen || !isHex(claims.Nonce) {
		return nil, ErrTokenNonce
	}
	return &claims, nil
}

func (s *TokenService) issue(base Claims, tokenType string, ttl time.Duration, code string) (string, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", err
	}
	now := s.now()
	base.Type = tokenType
	base.Nonce = nonce
	base.Code = code
	base.IssuedAt = now.Unix()
	base.ExpiresAt = now.Add(ttl).Unix()

	payload, err := json.Marshal(base)
	if err != nil {
		return "", fmt.Errorf("security: serializar claims: %w", err)
	}
	signingInput := tokenHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(s.sign(signingInput)), nil
}

func (s *TokenService) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

// newNonce genera 16 bytes aleatorios (32 caracteres hex).
func newNonce() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("security: generar nonce: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// randomTwoFactorCode genera un código numérico de 6 dígitos con crypto/rand.
func randomTwoFactorCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("security: generar código 2FA: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func mustEncodeSegment(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}
