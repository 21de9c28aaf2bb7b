package sri

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Coeficientes módulo-11 para la clave de acceso (Ficha Técnica SRI).
// El coeficiente de la posición i (de izquierda a derecha sobre los 48
// dígitos base) es mod11Coefficients[i%6].
var mod11Coefficients = [6]int{2, 3, 4, 5, 6, 7}

// AccessKeyParams parámetros para construir la clave de acceso de 49 dígitos.
type AccessKeyParams struct {
	EmissionDate time.Time // fecha de emisión del comprobante
	VoucherType  string    // código de comprobante, 2 dígitos (ej. "01" factura)
	IssuerRUC    string    // RUC del emisor, 13 dígitos
	Environment  string    // "1" producción, "2" pruebas
	Series       string    // establecimiento + punto de emisión, 6 dígitos (ej. "001001")
	Sequential   string    // secuencial, hasta 9 dígitos (se rellena con ceros)
	NumericCode  string    // código numérico de 8 dígitos; vacío = aleatorio
	EmissionType string    // tipo de emisión, 1 dígito; vacío = "1" (normal)
}

// GenerateAccessKey construye la clave de acceso SRI de 49 dígitos:
// fecha(8) + codDoc(2) + RUC(13) + ambiente(1) + serie(6) + secuencial(9) +
// código numérico(8) + tipoEmision(1) + dígito verificador módulo-11.
// Si NumericCode está vacío se genera con crypto/rand; inyectarlo hace la
// función determinista para tests.
func GenerateAccessKey(p AccessKeyParams) (string, error) {
	if p.EmissionDate.IsZero() {
		return "", fmt.Errorf("sri: fecha de emisión requerida para la clave de acceso")
	}
	if len(p.VoucherType) != 2 || !allDigits(p.VoucherType) {
		return "", fmt.Errorf("sri: código de comprobante inválido %q (2 dígitos)", p.VoucherType)
	}
	if len(p.IssuerRUC) != 13 || !allDigits(p.IssuerRUC) {
		return "", fmt.Errorf("sri: RUC emisor inválido %q (13 dígitos)", p.IssuerRUC)
	}
	if p.Environment != EnvironmentProduccion && p.Environment != EnvironmentPruebas {
		return "", fmt.Errorf("sri: ambiente inválido %q (1=producción, 2=pruebas)", p.Environment)
	}
	series := p.Series
	if series == "" {
		series = DefaultEstablishment + DefaultEmissionPoint
	}
	if len(series) != 6 || !allDigits(series) {
		return "", fmt.Errorf("sri: serie inválida %q (6 dígitos estab+ptoEmi)", series)
	}
	if p.Sequential == "" || len(p.Sequential) > 9 || !allDigits(p.Sequential) {
		return "", fmt.Errorf("sri: secuencial inválido %q (1 a 9 dígitos)", p.Sequential)
	}
	code := p.NumericCode
	if code == "" {
		var err error
		code, err = randomNumericCode()
		if err != nil {
			return "", fmt.Errorf("sri: generar código numérico: %w", err)
		}
	}
	if len(code) != 8 || !allDigits(code) {
		return "", fmt.Errorf("sri: código numérico inválido %q (8 dígitos)", code)
	}
	emissionType := p.EmissionType
	if emissionType == "" {
		emissionType = EmissionTypeNormal
	}
	if len(emissionType) != 1 || !allDigits(emissionType) {
		return "", fmt.Errorf("sri: tipo de emisión inválido %q (1 dígito)", emissionType)
	}

	base := p.EmissionDate.Format("20060102") +
		p.VoucherType +
		p.IssuerRUC +
		p.Environment +
		series +
		leftPadZeros(p.Sequential, 9) +
		code +
		emissionType

	check, err := Mod11CheckDigit(base)
	if err != nil {
		return "", err
	}
	return base + fmt.Sprintf("%d", check), nil
}

// Mod11CheckDigit calcula el dígito verificador módulo-11 sobre una cadena de
// dígitos, con el ciclo de coeficientes [2,3,4,5,6,7] aplicado de izquierda a
// derecha. Residuo 0 -> 0, residuo 1 -> 1, otro -> 11 - residuo.
func Mod11CheckDigit(digits string) (int, error) {
	if !allDigits(digits) {
		return 0, fmt.Errorf("sri: la base del módulo-11 solo admite dígitos")
	}
	var sum int
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * mod11Coefficients[i%6]
	}
	remainder := sum % 11
	switch remainder {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	default:
		return 11 - remainder, nil
	}
}

// ValidateAccessKey verifica longitud y dígito verificador de una clave de acceso.
func ValidateAccessKey(key string) bool {
	if len(key) != 49 || !allDigits(key) {
		return false
	}
	check, err := Mod11CheckDigit(key[:48])
	if err != nil {
		return false
	}
	return check == int(key[48]-'0')
}

func randomNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08d", n.Int64()), nil
}

func leftPadZeros(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
