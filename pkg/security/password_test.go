package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvinueza/contaec/pkg/security"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := security.HashPassword("Facturar2024!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "s2$"))

	assert.NoError(t, security.VerifyPassword("Facturar2024!", hash))
	assert.ErrorIs(t, security.VerifyPassword("Facturar2024?", hash), security.ErrPasswordMismatch)
}

func TestHashPassword_SaltAleatorio(t *testing.T) {
	h1, err := security.HashPassword("Facturar2024!")
	require.NoError(t, err)
	h2, err := security.HashPassword("Facturar2024!")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "cada hash lleva su propio salt")
}

func TestVerifyPassword_FormatoDesconocido(t *testing.T) {
	assert.Error(t, security.VerifyPassword("x", "bcrypt$algo"))
	assert.Error(t, security.VerifyPassword("x", "s2$no-hex$zz"))
	assert.Error(t, security.VerifyPassword("x", ""))
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"completa", "Facturar2024!", true},
		{"corta", "F2!a", false},
		{"sin mayúscula", "facturar2024!", false},
		{"sin minúscula", "FACTURAR2024!", false},
		{"sin dígito", "Facturar!", false},
		{"sin símbolo", "Facturar2024", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := security.ValidatePasswordStrength(tc.password)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
