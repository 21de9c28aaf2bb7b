package sri

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/mvinueza/contaec/internal/domain/entity"
	pkgsri "github.com/mvinueza/contaec/pkg/sri"
)

// XMLBuilderService construye el XML <factura> v2.1.0 (sin firma XAdES).
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el []byte del comprobante <factura> según la Ficha Técnica.
// El atributo id="comprobante" del elemento raíz es la Reference URI de la
// firma XAdES.
func (s *XMLBuilderService) Build(ctx *InvoiceBuildContext) ([]byte, error) {
	if ctx == nil || ctx.Invoice == nil || ctx.Company == nil || ctx.Client == nil {
		return nil, fmt.Errorf("sri: faltan invoice, company o client en el contexto")
	}
	if len(ctx.Details) == 0 {
		return nil, fmt.Errorf("sri: la factura no tiene detalles")
	}
	env := ctx.Environment
	if env == "" {
		env = pkgsri.EnvironmentPruebas
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	factura := doc.CreateElement("factura")
	factura.CreateAttr("id", "comprobante")
	factura.CreateAttr("version", "2.1.0")

	s.writeInfoTributaria(factura, ctx, env)
	s.writeInfoFactura(factura, ctx)
	s.writeDetalles(factura, ctx)
	s.writeInfoAdicional(factura, ctx)

	doc.Indent(2)
	return doc.WriteToBytes()
}

func (s *XMLBuilderService) writeInfoTributaria(parent *etree.Element, ctx *InvoiceBuildContext, env string) {
	info := parent.CreateElement("infoTributaria")
	info.CreateElement("ambiente").SetText(env)
	info.CreateElement("tipoEmision").SetText(pkgsri.EmissionTypeNormal)
	info.CreateElement("razonSocial").SetText(ctx.Company.RazonSocial)
	if ctx.Company.NombreComercial != "" {
		info.CreateElement("nombreComercial").SetText(ctx.Company.NombreComercial)
	}
	info.CreateElement("ruc").SetText(ctx.Company.RUC)
	info.CreateElement("claveAcceso").SetText(ctx.Invoice.AccessKey)
	info.CreateElement("codDoc").SetText(pkgsri.VoucherTypeFactura)
	info.CreateElement("estab").SetText(ctx.Invoice.Establishment)
	info.CreateElement("ptoEmi").SetText(ctx.Invoice.EmissionPoint)
	info.CreateElement("secuencial").SetText(ctx.Invoice.Sequential)
	info.CreateElement("dirMatriz").SetText(ctx.Company.Address)
}

func (s *XMLBuilderService) writeInfoFactura(parent *etree.Element, ctx *InvoiceBuildContext) {
	info := parent.CreateElement("infoFactura")
	// fechaEmision va en dd/mm/aaaa (Ficha Técnica, no ISO)
	info.CreateElement("fechaEmision").SetText(ctx.Invoice.Date.Format("02/01/2006"))
	if ctx.Company.Address != "" {
		info.CreateElement("dirEstablecimiento").SetText(ctx.Company.Address)
	}
	info.CreateElement("obligadoContabilidad").SetText("SI")
	info.CreateElement("tipoIdentificacionComprador").SetText(buyerIDType(ctx.Client))
	info.CreateElement("razonSocialComprador").SetText(ctx.Client.RazonSocial)
	info.CreateElement("identificacionComprador").SetText(ctx.Client.TaxID)
	if ctx.Client.Address != "" {
		info.CreateElement("direccionComprador").SetText(ctx.Client.Address)
	}
	info.CreateElement("totalSinImpuestos").SetText(money(ctx.Invoice.Subtotal))

	totalDiscount := decimal.Zero
	for _, d := range ctx.Details {
		totalDiscount = totalDiscount.Add(d.Discount)
	}
	info.CreateElement("totalDescuento").SetText(money(totalDiscount))

	// totalConImpuestos: un totalImpuesto por cada código de porcentaje presente.
	totales := info.CreateElement("totalConImpuestos")
	for _, bucket := range taxBuckets(ctx.Details) {
		ti := totales.CreateElement("totalImpuesto")
		ti.CreateElement("codigo").SetText(pkgsri.TaxCodeIVA)
		ti.CreateElement("codigoPorcentaje").SetText(bucket.code)
		ti.CreateElement("baseImponible").SetText(money(bucket.base))
		ti.CreateElement("valor").SetText(money(bucket.value))
	}

	info.CreateElement("propina").SetText("0.00")
	info.CreateElement("importeTotal").SetText(money(ctx.Invoice.GrandTotal))
	info.CreateElement("moneda").SetText("DOLAR")
}

func (s *XMLBuilderService) writeDetalles(parent *etree.Element, ctx *InvoiceBuildContext) {
	detalles := parent.CreateElement("detalles")
	for _, d := range ctx.Details {
		det := detalles.CreateElement("detalle")
		if d.Code != "" {
			det.CreateElement("codigoPrincipal").SetText(d.Code)
		}
		det.CreateElement("descripcion").SetText(d.Description)
		det.CreateElement("cantidad").SetText(quantity(d.Quantity))
		det.CreateElement("precioUnitario").SetText(quantity(d.UnitPrice))
		det.CreateElement("descuento").SetText(money(d.Discount))
		det.CreateElement("precioTotalSinImpuesto").SetText(money(d.Subtotal))

		impuestos := det.CreateElement("impuestos")
		imp := impuestos.CreateElement("impuesto")
		imp.CreateElement("codigo").SetText(pkgsri.TaxCodeIVA)
		imp.CreateElement("codigoPorcentaje").SetText(percentageCodeFor(d.IVARate))
		imp.CreateElement("tarifa").SetText(money(d.IVARate))
		imp.CreateElement("baseImponible").SetText(money(d.Subtotal))
		imp.CreateElement("valor").SetText(money(lineIVA(d.Subtotal, d.IVARate)))
	}
}

// writeInfoAdicional siempre cierra el comprobante con <infoAdicional>: un
// campo fijo con el sistema emisor más los datos de contacto del comprador
// cuando existen.
func (s *XMLBuilderService) writeInfoAdicional(parent *etree.Element, ctx *InvoiceBuildContext) {
	info := parent.CreateElement("infoAdicional")
	sistema := info.CreateElement("campoAdicional")
	sistema.CreateAttr("nombre", "sistemaEmisor")
	sistema.SetText("contaec")
	if ctx.Client.Email != "" {
		campo := info.CreateElement("campoAdicional")
		campo.CreateAttr("nombre", "email")
		campo.SetText(ctx.Client.Email)
	}
	if ctx.Client.Phone != "" {
		campo := info.CreateElement("campoAdicional")
		campo.CreateAttr("nombre", "telefono")
		campo.SetText(ctx.Client.Phone)
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

type taxBucket struct {
	code  string
	base  decimal.Decimal
	value decimal.Decimal
}

// taxBuckets agrupa los detalles por código de porcentaje de IVA, en orden de
// primera aparición.
func taxBuckets(details []*entity.InvoiceDetail) []taxBucket {
	var order []string
	byCode := map[string]*taxBucket{}
	for _, d := range details {
		code := percentageCodeFor(d.IVARate)
		b, ok := byCode[code]
		if !ok {
			b = &taxBucket{code: code}
			byCode[code] = b
			order = append(order, code)
		}
		b.base = b.base.Add(d.Subtotal)
		b.value = b.value.Add(lineIVA(d.Subtotal, d.IVARate))
	}
	out := make([]taxBucket, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

// percentageCodeFor mapea la tarifa de IVA al código de porcentaje de la
// tabla 17: 0% -> "0", 5% -> "5", tarifa general -> "2".
func percentageCodeFor(rate decimal.Decimal) string {
	switch {
	case rate.IsZero():
		return "0"
	case rate.Equal(pkgsri.IVARateReducido):
		return "5"
	default:
		return pkgsri.IVAPercentageCodeGeneral
	}
}

func lineIVA(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}

func buyerIDType(client *entity.Client) string {
	if client.IDType != "" {
		return client.IDType
	}
	return pkgsri.BuyerIDTypeFor(client.TaxID)
}

// money formatea montos con 2 decimales; quantity con 6 (cantidades y
// precios unitarios según la Ficha Técnica).
func money(d decimal.Decimal) string { return d.Round(2).StringFixed(2) }

func quantity(d decimal.Decimal) string { return d.Round(6).StringFixed(6) }
