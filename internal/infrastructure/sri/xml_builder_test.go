package sri_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvinueza/contaec/internal/domain/entity"
	infrasri "github.com/mvinueza/contaec/internal/infrastructure/sri"
	pkgsri "github.com/mvinueza/contaec/pkg/sri"
)

func buildContext() *infrasri.InvoiceBuildContext {
	return &infrasri.InvoiceBuildContext{
		Invoice: &entity.Invoice{
			ID:            "inv-1",
			CompanyID:     "co-1",
			ClientID:      "cl-1",
			Establishment: "001",
			EmissionPoint: "001",
			Sequential:    "000000123",
			Date:          time.Date(2024, 7, 15, 10, 30, 0, 0, time.UTC),
			Subtotal:      decimal.NewFromFloat(100.00),
			IVATotal:      decimal.NewFromFloat(15.00),
			GrandTotal:    decimal.NewFromFloat(115.00),
			AccessKey:     "2024071501179000000200120010010000001231234567811",
		},
		Company: &entity.Company{
			ID:          "co-1",
			RazonSocial: "Comercial Andina S.A.",
			RUC:         "1790000002001",
			Address:     "Av. Amazonas N26-146, Quito",
		},
		Client: &entity.Client{
			ID:          "cl-1",
			RazonSocial: "María Pérez",
			TaxID:       "1710034065",
			IDType:      pkgsri.BuyerIDTypeCedula,
			Email:       "maria@example.ec",
		},
		Details: []*entity.InvoiceDetail{
			{
				ID:          "det-1",
				InvoiceID:   "inv-1",
				Code:        "SRV-001",
				Description: "Servicios contables julio",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromFloat(50.00),
				Discount:    decimal.Zero,
				IVARate:     decimal.NewFromInt(15),
				Subtotal:    decimal.NewFromFloat(100.00),
			},
		},
		Environment: pkgsri.EnvironmentPruebas,
	}
}

func buildAndParse(t *testing.T, ctx *infrasri.InvoiceBuildContext) *etree.Document {
	t.Helper()
	xmlBytes, err := infrasri.NewXMLBuilderService().Build(ctx)
	require.NoError(t, err)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))
	return doc
}

func TestBuild_EstructuraFactura(t *testing.T) {
	doc := buildAndParse(t, buildContext())

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "factura", root.Tag)
	assert.Equal(t, "comprobante", root.SelectAttrValue("id", ""))
	assert.Equal(t, "2.1.0", root.SelectAttrValue("version", ""))
}

func TestBuild_InfoTributaria(t *testing.T) {
	doc := buildAndParse(t, buildContext())

	assert.Equal(t, "2", doc.FindElement("//infoTributaria/ambiente").Text())
	assert.Equal(t, "1790000002001", doc.FindElement("//infoTributaria/ruc").Text())
	assert.Equal(t, "01", doc.FindElement("//infoTributaria/codDoc").Text())
	assert.Equal(t, "000000123", doc.FindElement("//infoTributaria/secuencial").Text())
	assert.Equal(t,
		"2024071501179000000200120010010000001231234567811",
		doc.FindElement("//infoTributaria/claveAcceso").Text())
}

func TestBuild_InfoFacturaTotales(t *testing.T) {
	doc := buildAndParse(t, buildContext())

	assert.Equal(t, "15/07/2024", doc.FindElement("//infoFactura/fechaEmision").Text(),
		"la fecha va en dd/mm/aaaa")
	assert.Equal(t, "100.00", doc.FindElement("//infoFactura/totalSinImpuestos").Text())
	assert.Equal(t, "115.00", doc.FindElement("//infoFactura/importeTotal").Text())
	assert.Equal(t, "05", doc.FindElement("//infoFactura/tipoIdentificacionComprador").Text())
	assert.Equal(t, "DOLAR", doc.FindElement("//infoFactura/moneda").Text())

	// Bucket IVA tarifa general: codigo 2, codigoPorcentaje 2.
	assert.Equal(t, "2", doc.FindElement("//totalConImpuestos/totalImpuesto/codigo").Text())
	assert.Equal(t, "2", doc.FindElement("//totalConImpuestos/totalImpuesto/codigoPorcentaje").Text())
	assert.Equal(t, "100.00", doc.FindElement("//totalConImpuestos/totalImpuesto/baseImponible").Text())
	assert.Equal(t, "15.00", doc.FindElement("//totalConImpuestos/totalImpuesto/valor").Text())
}

func TestBuild_Detalle(t *testing.T) {
	doc := buildAndParse(t, buildContext())

	assert.Equal(t, "Servicios contables julio", doc.FindElement("//detalles/detalle/descripcion").Text())
	assert.Equal(t, "2.000000", doc.FindElement("//detalles/detalle/cantidad").Text(),
		"cantidades con 6 decimales")
	assert.Equal(t, "50.000000", doc.FindElement("//detalles/detalle/precioUnitario").Text())
	assert.Equal(t, "100.00", doc.FindElement("//detalles/detalle/precioTotalSinImpuesto").Text())
	assert.Equal(t, "15.00", doc.FindElement("//detalles/detalle/impuestos/impuesto/tarifa").Text())
	assert.Equal(t, "15.00", doc.FindElement("//detalles/detalle/impuestos/impuesto/valor").Text())
}

func TestBuild_BucketsPorTarifa(t *testing.T) {
	ctx := buildContext()
	ctx.Details = append(ctx.Details, &entity.InvoiceDetail{
		ID:          "det-2",
		InvoiceID:   "inv-1",
		Description: "Medicinas (tarifa 0)",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromFloat(20.00),
		IVARate:     decimal.Zero,
		Subtotal:    decimal.NewFromFloat(20.00),
	})
	ctx.Invoice.Subtotal = decimal.NewFromFloat(120.00)
	ctx.Invoice.GrandTotal = decimal.NewFromFloat(135.00)

	doc := buildAndParse(t, ctx)
	buckets := doc.FindElements("//totalConImpuestos/totalImpuesto")
	require.Len(t, buckets, 2, "una entrada por código de porcentaje")

	codes := []string{
		buckets[0].FindElement("codigoPorcentaje").Text(),
		buckets[1].FindElement("codigoPorcentaje").Text(),
	}
	assert.Equal(t, []string{"2", "0"}, codes, "orden de primera aparición")
	assert.Equal(t, "20.00", buckets[1].FindElement("baseImponible").Text())
	assert.Equal(t, "0.00", buckets[1].FindElement("valor").Text())
}

func TestBuild_InfoAdicional(t *testing.T) {
	doc := buildAndParse(t, buildContext())
	campos := doc.FindElements("//infoAdicional/campoAdicional")
	require.Len(t, campos, 2)

	assert.Equal(t, "sistemaEmisor", campos[0].SelectAttrValue("nombre", ""))
	assert.Equal(t, "contaec", campos[0].Text())
	assert.Equal(t, "email", campos[1].SelectAttrValue("nombre", ""))
	assert.Equal(t, "maria@example.ec", campos[1].Text())
}

// El bloque <infoAdicional> se emite siempre, aun sin datos de contacto del
// comprador: queda el campo fijo del sistema emisor.
func TestBuild_InfoAdicionalSinContacto(t *testing.T) {
	ctx := buildContext()
	ctx.Client.Email = ""
	ctx.Client.Phone = ""

	doc := buildAndParse(t, ctx)
	info := doc.FindElement("//infoAdicional")
	require.NotNil(t, info, "infoAdicional debe emitirse siempre")

	campos := info.FindElements("campoAdicional")
	require.Len(t, campos, 1)
	assert.Equal(t, "sistemaEmisor", campos[0].SelectAttrValue("nombre", ""))
	assert.Equal(t, "contaec", campos[0].Text())
}

func TestBuild_ContextoIncompleto(t *testing.T) {
	_, err := infrasri.NewXMLBuilderService().Build(nil)
	assert.Error(t, err)

	ctx := buildContext()
	ctx.Client = nil
	_, err = infrasri.NewXMLBuilderService().Build(ctx)
	assert.Error(t, err)

	ctx = buildContext()
	ctx.Details = nil
	_, err = infrasri.NewXMLBuilderService().Build(ctx)
	assert.Error(t, err)
}
