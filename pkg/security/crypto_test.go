package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvinueza/contaec/pkg/security"
)

func newCrypto(t *testing.T) *security.Crypto {
	t.Helper()
	key, err := security.RandomKey()
	require.NoError(t, err)
	c, err := security.NewCrypto(key)
	require.NoError(t, err)
	return c
}

func TestCrypto_RoundTrip(t *testing.T) {
	c := newCrypto(t)

	payload, err := c.Encrypt("RUC 1790000002001 — datos del certificado")
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Ciphertext)
	assert.Len(t, payload.IV, 24, "IV de 12 bytes en hex")
	assert.Len(t, payload.AuthTag, 32, "auth tag de 16 bytes en hex")

	plain, err := c.Decrypt(payload)
	require.NoError(t, err)
	assert.Equal(t, "RUC 1790000002001 — datos del certificado", plain)
}

// La cadena vacía también cifra y descifra: el ciphertext queda vacío y el
// auth tag solo autentica el AAD.
func TestCrypto_RoundTripCadenaVacia(t *testing.T) {
	c := newCrypto(t)

	payload, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, payload.Ciphertext)
	assert.Len(t, payload.IV, 24)
	assert.Len(t, payload.AuthTag, 32)

	plain, err := c.Decrypt(payload)
	require.NoError(t, err)
	assert.Equal(t, "", plain)
}

func TestCrypto_IVUnicoPorLlamada(t *testing.T) {
	c := newCrypto(t)
	p1, err := c.Encrypt("mismo texto")
	require.NoError(t, err)
	p2, err := c.Encrypt("mismo texto")
	require.NoError(t, err)
	assert.NotEqual(t, p1.IV, p2.IV)
	assert.NotEqual(t, p1.Ciphertext, p2.Ciphertext)
}

func TestCrypto_FallaCerradoAnteManipulacion(t *testing.T) {
	c := newCrypto(t)
	payload, err := c.Encrypt("secreto")
	require.NoError(t, err)

	t.Run("ciphertext alterado", func(t *testing.T) {
		tampered := *payload
		tampered.Ciphertext = flipFirstHexDigit(tampered.Ciphertext)
		_, err := c.Decrypt(&tampered)
		assert.ErrorIs(t, err, security.ErrIntegrity)
	})

	t.Run("auth tag alterado", func(t *testing.T) {
		tampered := *payload
		tampered.AuthTag = flipFirstHexDigit(tampered.AuthTag)
		_, err := c.Decrypt(&tampered)
		assert.ErrorIs(t, err, security.ErrIntegrity)
	})

	t.Run("IV alterado", func(t *testing.T) {
		tampered := *payload
		tampered.IV = flipFirstHexDigit(tampered.IV)
		_, err := c.Decrypt(&tampered)
		assert.ErrorIs(t, err, security.ErrIntegrity)
	})

	t.Run("clave distinta", func(t *testing.T) {
		other := newCrypto(t)
		_, err := other.Decrypt(payload)
		assert.ErrorIs(t, err, security.ErrIntegrity)
	})
}

func TestCrypto_EntradasInvalidas(t *testing.T) {
	c := newCrypto(t)

	_, err := c.Decrypt(nil)
	assert.Error(t, err)

	_, err = c.Decrypt(&security.EncryptedPayload{Ciphertext: "zz", IV: "00", AuthTag: "00"})
	assert.Error(t, err)

	_, err = security.NewCrypto([]byte("corta"))
	assert.Error(t, err, "clave de longitud incorrecta debe rechazarse")
}

func flipFirstHexDigit(s string) string {
	if s == "" {
		return s
	}
	replacement := byte('0')
	if s[0] == '0' {
		replacement = '1'
	}
	return string(replacement) + s[1:]
}
