package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/scrypt"
)

// Parámetros scrypt recomendados para login interactivo (2024).
const (
	scryptN       = 1 << 15
	scryptR       = 8
	scryptP       = 1
	scryptKeyLen  = 32
	scryptSaltLen = 16
	scryptPrefix  = "s2"
)

// ErrPasswordMismatch la contraseña no corresponde al hash almacenado.
var ErrPasswordMismatch = errors.New("security: contraseña incorrecta")

// HashPassword deriva un hash scrypt con salt aleatorio.
// Formato almacenado: "s2$saltHex$hashHex".
func HashPassword(password string) (string, error) {
	salt := make([]byte, scryptSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("security: generar salt: %w", err)
	}
	derived, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("security: derivar hash: %w", err)
	}
	return strings.Join([]string{scryptPrefix, hex.EncodeToString(salt), hex.EncodeToString(derived)}, "$"), nil
}

// VerifyPassword rederiva el hash con el salt almacenado y compara en tiempo
// constante. Un hash con formato desconocido se rechaza sin derivar.
func VerifyPassword(password, stored string) error {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 || parts[0] != scryptPrefix {
		return fmt.Errorf("security: formato de hash desconocido")
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("security: salt no es hexadecimal: %w", err)
	}
	expected, err := hex.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("security: hash no es hexadecimal: %w", err)
	}
	derived, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(expected))
	if err != nil {
		return fmt.Errorf("security: derivar hash: %w", err)
	}
	if subtle.ConstantTimeCompare(derived, expected) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidatePasswordStrength exige mínimo 8 caracteres con mayúscula,
// minúscula, dígito y símbolo. Devuelve todas las faltas, no solo la primera.
func ValidatePasswordStrength(password string) error {
	var faults []string
	if len(password) < 8 {
		faults = append(faults, "mínimo 8 caracteres")
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper {
		faults = append(faults, "al menos una mayúscula")
	}
	if !hasLower {
		faults = append(faults, "al menos una minúscula")
	}
	if !hasDigit {
		faults = append(faults, "al menos un dígito")
	}
	if !hasSymbol {
		faults = append(faults, "al menos un símbolo")
	}
	if len(faults) > 0 {
		return fmt.Errorf("security: contraseña débil: %s", strings.Join(faults, ", "))
	}
	return nil
}
