package sri_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvinueza/contaec/pkg/sri"
)

// Cédula real de referencia: provincia 17 (Pichincha), dígito verificador 5.
// 2+7+2+0+0+3+8+0+3 = 25 -> 10 - (25 % 10) = 5.
const validCedula = "1710034065"

// RUC canónico del sistema: raíz 1790000002 pasa el algoritmo de cédula
// (2+7+9 = 18 -> dígito 2) y tiene 9 en la posición 2.
const validRUC = "1790000002001"

func TestValidateCedula(t *testing.T) {
	cases := []struct {
		name  string
		id    string
		valid bool
	}{
		{"cédula válida", validCedula, true},
		{"dígito verificador alterado", "1710034066", false},
		{"provincia 00 fuera de rango", "0010034065", false},
		{"provincia 25 fuera de rango", "2510034065", false},
		{"provincia 24 es válida", "", true}, // se construye abajo
		{"muy corta", "171003406", false},
		{"muy larga", "17100340655", false},
		{"con letras", "17100340x5", false},
		{"vacía", "", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			id := tc.id
			if tc.name == "provincia 24 es válida" {
				// 240000000: 4+4 = 8 -> dígito 10-8 = 2
				id = "2400000002"
			}
			if tc.name == "vacía" {
				assert.False(t, sri.ValidateCedula(id))
				return
			}
			assert.Equal(t, tc.valid, sri.ValidateCedula(id), "cédula %q", id)
		})
	}
}

func TestValidateRUC(t *testing.T) {
	assert.True(t, sri.ValidateRUC(validRUC), "RUC canónico debe ser válido")

	// La raíz embebida es una cédula válida, pero la posición 2 no es 9.
	assert.False(t, sri.ValidateRUC(validCedula+"001"),
		"RUC sin 9 en la posición 2 debe rechazarse")

	// 9 en posición 2 pero raíz con dígito verificador incorrecto.
	assert.False(t, sri.ValidateRUC("1790000003001"))

	assert.False(t, sri.ValidateRUC("179000000200"), "12 dígitos")
	assert.False(t, sri.ValidateRUC("17900000020011"), "14 dígitos")
	assert.False(t, sri.ValidateRUC("179000000200a"), "no numérico")
}

func TestValidateTaxID(t *testing.T) {
	assert.True(t, sri.ValidateTaxID(validCedula))
	assert.True(t, sri.ValidateTaxID(validRUC))
	assert.False(t, sri.ValidateTaxID("12345"))
	assert.False(t, sri.ValidateTaxID("1710034065001"), "13 dígitos sin 9 en posición 2")
}

func TestBuyerIDTypeFor(t *testing.T) {
	assert.Equal(t, sri.BuyerIDTypeRUC, sri.BuyerIDTypeFor(validRUC))
	assert.Equal(t, sri.BuyerIDTypeCedula, sri.BuyerIDTypeFor(validCedula))
	assert.Equal(t, sri.BuyerIDTypePasaporte, sri.BuyerIDTypeFor("AB123456"))
}
