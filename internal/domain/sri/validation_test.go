package sri_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvinueza/contaec/internal/domain/entity"
	domainsri "github.com/mvinueza/contaec/internal/domain/sri"
	"github.com/mvinueza/contaec/pkg/sri"
)

// Factura coherente: 100.00 de base con IVA 15% -> 15.00 de IVA, 115.00 total.
func buildValidInvoice() (*entity.Invoice, []*entity.InvoiceDetail) {
	inv := &entity.Invoice{
		ID:            "inv-1",
		CompanyID:     "co-1",
		ClientID:      "cl-1",
		Establishment: "001",
		EmissionPoint: "001",
		Sequential:    "000000123",
		Date:          time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Subtotal:      decimal.NewFromFloat(100.00),
		IVATotal:      decimal.NewFromFloat(15.00),
		GrandTotal:    decimal.NewFromFloat(115.00),
	}
	details := []*entity.InvoiceDetail{
		{
			ID:        "det-1",
			InvoiceID: "inv-1",
			Quantity:  decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromFloat(50.00),
			IVARate:   decimal.NewFromInt(15),
			Subtotal:  decimal.NewFromFloat(100.00),
		},
	}
	return inv, details
}

func TestValidateInvoice_Valida(t *testing.T) {
	inv, details := buildValidInvoice()
	err := domainsri.ValidateInvoice(inv, details, sri.BuyerIDTypeCedula, "1710034065")
	assert.NoError(t, err)
}

func TestValidateInvoice_RUCInvalido(t *testing.T) {
	inv, details := buildValidInvoice()
	err := domainsri.ValidateInvoice(inv, details, sri.BuyerIDTypeRUC, "1710034065001")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainsri.ErrInvalidInvoice)
}

func TestValidateInvoice_ConsumidorFinalNoExigeDigito(t *testing.T) {
	// El consumidor final usa la identificación genérica 9999999999999.
	inv, details := buildValidInvoice()
	err := domainsri.ValidateInvoice(inv, details, sri.BuyerIDTypeConsumidorFinal, "9999999999999")
	assert.NoError(t, err)
}

func TestValidateInvoice_TotalesIncoherentes(t *testing.T) {
	inv, details := buildValidInvoice()
	inv.IVATotal = decimal.NewFromFloat(19.00)
	inv.GrandTotal = decimal.NewFromFloat(119.00)
	err := domainsri.ValidateInvoice(inv, details, sri.BuyerIDTypeCedula, "1710034065")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total IVA")
}

func TestValidateInvoice_SinDetalles(t *testing.T) {
	inv, _ := buildValidInvoice()
	err := domainsri.ValidateInvoice(inv, nil, sri.BuyerIDTypeCedula, "1710034065")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainsri.ErrInvalidInvoice)
}

func TestValidateInvoice_FacturaNula(t *testing.T) {
	err := domainsri.ValidateInvoice(nil, nil, sri.BuyerIDTypeCedula, "1710034065")
	assert.ErrorIs(t, err, domainsri.ErrInvalidInvoice)
}
