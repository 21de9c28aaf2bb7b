package security_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvinueza/contaec/pkg/security"
)

var tokenSecret = []byte("clave-hmac-de-pruebas-suficientemente-larga")

func baseClaims() security.Claims {
	return security.Claims{
		UserID:    "8f14e45f-ceea-4e17-a1f5-1b0c1c4b8a01",
		CompanyID: "c29a1b4e-0d2f-4f4a-9d3e-6a7b8c9d0e1f",
		Email:     "contadora@empresa.ec",
		Role:      "admin",
	}
}

// clockAt devuelve un servicio con reloj congelado y el puntero para moverlo.
func clockAt(start time.Time) (*security.TokenService, *time.Time) {
	current := start
	svc := security.NewTokenServiceWithClock(tokenSecret, func() time.Time { return current })
	return svc, &current
}

func TestIssueTokenSet_VerificaInmediatamente(t *testing.T) {
	svc := security.NewTokenService(tokenSecret)
	set, err := svc.IssueTokenSet(baseClaims())
	require.NoError(t, err)

	claims, err := svc.Verify(set.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, security.TokenTypeAccess, claims.Type)
	assert.Equal(t, "contadora@empresa.ec", claims.Email)
	assert.Len(t, claims.Nonce, 32, "nonce de 32 caracteres hex")
	assert.Equal(t, int64(3600), set.ExpiresIn)

	refresh, err := svc.Verify(set.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, security.TokenTypeRefresh, refresh.Type)
	assert.NotEqual(t, claims.Nonce, refresh.Nonce, "cada token lleva su propio nonce")

	twoFactor, err := svc.Verify(set.TwoFactorToken)
	require.NoError(t, err)
	assert.Equal(t, security.TokenTypeTwoFactor, twoFactor.Type)
	assert.Len(t, twoFactor.Code, 6)
	assert.Equal(t, set.TwoFactorCode, twoFactor.Code)
}

func TestVerify_Expiracion(t *testing.T) {
	svc, clock := clockAt(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))
	set, err := svc.IssueTokenSet(baseClaims())
	require.NoError(t, err)

	// El access token dura 1h; el 2FA solo 5 minutos.
	*clock = clock.Add(6 * time.Minute)
	_, err = svc.Verify(set.AccessToken)
	assert.NoError(t, err)
	_, err = svc.Verify(set.TwoFactorToken)
	assert.ErrorIs(t, err, security.ErrTokenExpired)

	*clock = clock.Add(time.Hour)
	_, err = svc.Verify(set.AccessToken)
	assert.ErrorIs(t, err, security.ErrTokenExpired)

	// El refresh sobrevive horas pero no 7 días.
	_, err = svc.Verify(set.RefreshToken)
	assert.NoError(t, err)
	*clock = clock.Add(7 * 24 * time.Hour)
	_, err = svc.Verify(set.RefreshToken)
	assert.ErrorIs(t, err, security.ErrTokenExpired)
}

func TestVerify_EmitidoEnElFuturo(t *testing.T) {
	svc, clock := clockAt(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))
	set, err := svc.IssueTokenSet(baseClaims())
	require.NoError(t, err)

	*clock = clock.Add(-time.Minute)
	_, err = svc.Verify(set.AccessToken)
	assert.ErrorIs(t, err, security.ErrTokenNotYetValid)
}

func TestVerify_FirmaInvalida(t *testing.T) {
	svc := security.NewTokenService(tokenSecret)
	set, err := svc.IssueTokenSet(baseClaims())
	require.NoError(t, err)

	// Manipular el payload sin refirmar.
	parts := strings.Split(set.AccessToken, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))
	claims["role"] = "superadmin"
	forged, err := json.Marshal(claims)
	require.NoError(t, err)
	tampered := parts[0] + "." + base64.RawURLEncoding.EncodeToString(forged) + "." + parts[2]

	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, security.ErrTokenSignature)

	// Otro secreto tampoco verifica.
	otherSvc := security.NewTokenService([]byte("otro-secreto"))
	_, err = otherSvc.Verify(set.AccessToken)
	assert.ErrorIs(t, err, security.ErrTokenSignature)
}

func TestVerify_TokenMalFormado(t *testing.T) {
	svc := security.NewTokenService(tokenSecret)

	for _, token := range []string{
		"",
		"solo-un-segmento",
		"dos.segmentos",
		"a.b.c.d",
		"no-base64!.no-base64!.no-base64!",
	} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, security.ErrTokenMalformed, "token %q", token)
	}
}

func TestVerify_NonceCorto(t *testing.T) {
	svc := security.NewTokenService(tokenSecret)

	// Forjar un token firmado correctamente pero con nonce insuficiente.
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	now := time.Now().Unix()
	claims := security.Claims{
		UserID:    "u1",
		Type:      security.TokenTypeAccess,
		Nonce:     "abcd",
		IssuedAt:  now,
		ExpiresAt: now + 3600,
	}
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	token := signedToken(t, header, base64.RawURLEncoding.EncodeToString(payload))

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, security.ErrTokenNonce)
}

// signedToken firma header.payload replicando el esquema HMAC del servicio.
func signedToken(t *testing.T, header, payload string) string {
	t.Helper()
	mac := hmac.New(sha256.New, tokenSecret)
	mac.Write([]byte(header + "." + payload))
	return header + "." + payload + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
