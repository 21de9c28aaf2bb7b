// Package sri contiene validaciones de dominio para comprobantes electrónicos SRI (Ecuador),
// según la Ficha Técnica v2.1.0. Utiliza catálogos y reglas de pkg/sri.
package sri

import (
	"errors"
	"fmt"

	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/pkg/sri"

	"github.com/shopspring/decimal"
)

// ErrInvalidInvoice agrupa errores de validación de factura.
var ErrInvalidInvoice = errors.New("factura inválida para el SRI")

// ValidateInvoice valida la factura y sus detalles antes de generar el XML.
// Para compradores con RUC o cédula exige que la identificación pase el
// dígito verificador correspondiente. Comprueba que los totales declarados
// coincidan con la suma de los ítems.
func ValidateInvoice(
	invoice *entity.Invoice,
	details []*entity.InvoiceDetail,
	clientIDType string,
	clientTaxID string,
) error {
	if invoice == nil {
		return fmt.Errorf("%w: factura nula", ErrInvalidInvoice)
	}
	var errs []error

	switch clientIDType {
	case sri.BuyerIDTypeRUC:
		if !sri.ValidateRUC(clientTaxID) {
			errs = append(errs, fmt.Errorf("cliente: RUC %q no pasa el dígito verificador", clientTaxID))
		}
	case sri.BuyerIDTypeCedula:
		if !sri.ValidateCedula(clientTaxID) {
			errs = append(errs, fmt.Errorf("cliente: cédula %q no pasa el dígito verificador", clientTaxID))
		}
	}

	// Totales coherentes con los detalles.
	if len(details) == 0 {
		errs = append(errs, fmt.Errorf("%w: la factura debe tener al menos un detalle", ErrInvalidInvoice))
	} else {
		var sumSubtotal, sumIVA decimal.Decimal
		cien := decimal.NewFromInt(100)
		for _, d := range details {
			sumSubtotal = sumSubtotal.Add(d.Subtotal)
			// IVA por línea = Subtotal * tarifa / 100 (tarifa como porcentaje: 0, 5, 15).
			lineIVA := d.Subtotal.Mul(d.IVARate).Div(cien).Round(2)
			sumIVA = sumIVA.Add(lineIVA)
		}
		if !invoice.Subtotal.Equal(sumSubtotal.Round(2)) {
			errs = append(errs, fmt.Errorf("subtotal (%s) no coincide con la suma de subtotales de ítems (%s)", invoice.Subtotal.String(), sumSubtotal.Round(2).String()))
		}
		if !invoice.IVATotal.Equal(sumIVA) {
			errs = append(errs, fmt.Errorf("total IVA (%s) no coincide con la suma de IVA por ítems (%s)", invoice.IVATotal.String(), sumIVA.String()))
		}
		expectedGrand := sumSubtotal.Add(sumIVA).Round(2)
		if !invoice.GrandTotal.Equal(expectedGrand) {
			errs = append(errs, fmt.Errorf("importe total (%s) no coincide con subtotal + IVA (%s)", invoice.GrandTotal.String(), expectedGrand.String()))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidInvoice}, errs...)...)
	}
	return nil
}
