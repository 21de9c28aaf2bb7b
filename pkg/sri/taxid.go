// Package sri contiene catálogos, validaciones y algoritmos alineados a la
// Ficha Técnica de Comprobantes Electrónicos del SRI (Ecuador) v2.1.0.
package sri

// Coeficientes módulo-10 para la cédula ecuatoriana.
// Se aplican a los 9 primeros dígitos, de izquierda a derecha; si el producto
// resulta >= 10 se le resta 9 antes de sumar.
var cedulaCoefficients = [9]int{2, 1, 2, 1, 2, 1, 2, 1, 2}

// provinceCount cantidad de provincias válidas en el código 01-24.
const provinceCount = 24

// ValidateCedula valida una cédula ecuatoriana de 10 dígitos: código de
// provincia en [01,24] y dígito verificador módulo-10.
// Es un predicado: cualquier entrada malformada retorna false, nunca error.
func ValidateCedula(id string) bool {
	if len(id) != 10 || !allDigits(id) {
		return false
	}
	province := int(id[0]-'0')*10 + int(id[1]-'0')
	if province < 1 || province > provinceCount {
		return false
	}
	var sum int
	for i := 0; i < 9; i++ {
		product := int(id[i]-'0') * cedulaCoefficients[i]
		if product >= 10 {
			product -= 9
		}
		sum += product
	}
	expected := 0
	if sum%10 != 0 {
		expected = 10 - sum%10
	}
	return expected == int(id[9]-'0')
}

// ValidateRUC valida un RUC de 13 dígitos según la regla del sistema:
// el dígito en la posición 2 (base 0) debe ser 9 y los 10 primeros dígitos
// deben pasar el algoritmo de cédula. La regla unifica la raíz de persona
// natural y jurídica; se mantiene tal cual la define el negocio.
func ValidateRUC(id string) bool {
	if len(id) != 13 || !allDigits(id) {
		return false
	}
	if id[2] != '9' {
		return false
	}
	return ValidateCedula(id[:10])
}

// ValidateTaxID acepta cédula (10 dígitos) o RUC (13 dígitos).
func ValidateTaxID(id string) bool {
	switch len(id) {
	case 10:
		return ValidateCedula(id)
	case 13:
		return ValidateRUC(id)
	default:
		return false
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
