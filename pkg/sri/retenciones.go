package sri

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tipos de retención soportados.
const (
	RetentionTypeRenta = "renta" // retención en la fuente (impuesto a la renta)
	RetentionTypeIVA   = "iva"   // retención de IVA
)

// Conceptos por defecto cuando el concepto no figura en la tabla.
const (
	DefaultConceptRenta = "otros_servicios"
	DefaultConceptIVA   = "servicios"
)

// Bases legales de las tablas de retención.
const (
	legalBaseRenta = "Art. 45 LORTI"
	legalBaseIVA   = "Art. 63 LIV"
)

// Tablas de porcentajes de retención Ecuador 2024 (normativa vigente).
// Son de solo lectura: nunca se mutan en runtime.
var (
	rentaPercentages = map[string]decimal.Decimal{
		"bienes":                   decimal.NewFromFloat(1.0),
		"servicios":                decimal.NewFromFloat(2.0),
		"arrendamientos":           decimal.NewFromFloat(8.0),
		"honorarios":               decimal.NewFromFloat(10.0),
		"transporte":               decimal.NewFromFloat(1.0),
		"combustibles":             decimal.NewFromFloat(0.3),
		"seguros":                  decimal.NewFromFloat(1.0),
		"rendimientos_financieros": decimal.NewFromFloat(2.0),
		"otros_servicios":          decimal.NewFromFloat(2.0),
	}

	ivaPercentages = map[string]decimal.Decimal{
		"bienes":                  decimal.NewFromFloat(30.0),
		"servicios":               decimal.NewFromFloat(70.0),
		"servicios_profesionales": decimal.NewFromFloat(100.0),
	}
)

// Retention resultado del cálculo de una retención.
type Retention struct {
	Percentage decimal.Decimal // porcentaje aplicado
	Amount     decimal.Decimal // base * porcentaje / 100, redondeado a 2 decimales
	Concept    string          // concepto efectivamente aplicado (puede ser el default)
	LegalBase  string          // base legal de la tabla
}

// CalculateRetention calcula la retención para una base imponible no negativa.
// Concepto desconocido cae al default documentado de cada tipo; tipo
// desconocido o base negativa son errores de validación.
func CalculateRetention(baseAmount decimal.Decimal, taxType, concept string) (*Retention, error) {
	if baseAmount.IsNegative() {
		return nil, fmt.Errorf("sri: la base imponible no puede ser negativa (%s)", baseAmount.String())
	}

	var (
		table      map[string]decimal.Decimal
		defaultKey string
		legalBase  string
	)
	switch taxType {
	case RetentionTypeRenta:
		table, defaultKey, legalBase = rentaPercentages, DefaultConceptRenta, legalBaseRenta
	case RetentionTypeIVA:
		table, defaultKey, legalBase = ivaPercentages, DefaultConceptIVA, legalBaseIVA
	default:
		return nil, fmt.Errorf("sri: tipo de retención desconocido %q (renta|iva)", taxType)
	}

	applied := concept
	percentage, ok := table[concept]
	if !ok {
		applied = defaultKey
		percentage = table[defaultKey]
	}

	amount := baseAmount.Mul(percentage).Div(decimal.NewFromInt(100)).Round(2)
	return &Retention{
		Percentage: percentage,
		Amount:     amount,
		Concept:    applied,
		LegalBase:  legalBase,
	}, nil
}
