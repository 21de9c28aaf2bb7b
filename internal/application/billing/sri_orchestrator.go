package billing

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/internal/domain/repository"
	infrasri "github.com/mvinueza/contaec/internal/infrastructure/sri"
	"github.com/mvinueza/contaec/internal/infrastructure/sri/signer"
	"github.com/mvinueza/contaec/pkg/logger"
	pkgsri "github.com/mvinueza/contaec/pkg/sri"
)

// SRIProcessConfig parámetros del pipeline SRI (entorno y certificado de firma).
type SRIProcessConfig struct {
	AppEnv       string // dev | test | prod
	Environment  string // "1" producción, "2" pruebas (va en <ambiente>)
	CertPath     string // .p12/.pfx o .pem; vacío = no firmar (solo dev)
	CertKeyPath  string // llave privada .pem cuando CertPath es solo el certificado
	CertPassword string // contraseña del .p12
}

// SRIOrchestrator orquesta el ciclo completo del comprobante electrónico:
//
//	XML v2.1.0 → Firma XAdES-BES → Envío SOAP recepción → Update DB
//
// Se ejecuta siempre en goroutine independiente (ProcessAsync) con su propio
// context.Background() + timeout 30 s, desacoplado del ciclo HTTP.
//
// Modos de operación (SRIProcessConfig.AppEnv):
//   - "dev"  → Genera y firma el XML (si hay certificado), NO envía al WS.
//     Estado final: AUTORIZADA (simulada).
//   - "test" → Envía al ambiente de certificación celcer.sri.gob.ec.
//   - "prod" → Envía al ambiente de producción cel.sri.gob.ec.
type SRIOrchestrator struct {
	invoiceRepo repository.InvoiceRepository
	companyRepo repository.CompanyRepository
	clientRepo  repository.ClientRepository
	xmlBuilder  *infrasri.XMLBuilderService
	signer      pkgsri.Signer
	submitter   infrasri.Submitter // cliente SOAP; nil en dev
	cfg         SRIProcessConfig
	log         *logger.Logger
}

// NewSRIOrchestrator construye el orquestador con todas sus dependencias.
// submitter puede ser nil: en ese caso el modo dev es el único que funciona.
func NewSRIOrchestrator(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	clientRepo repository.ClientRepository,
	xmlBuilder *infrasri.XMLBuilderService,
	sigService pkgsri.Signer,
	submitter infrasri.Submitter,
	cfg SRIProcessConfig,
	log *logger.Logger,
) *SRIOrchestrator {
	return &SRIOrchestrator{
		invoiceRepo: invoiceRepo,
		companyRepo: companyRepo,
		clientRepo:  clientRepo,
		xmlBuilder:  xmlBuilder,
		signer:      sigService,
		submitter:   submitter,
		cfg:         cfg,
		log:         log,
	}
}

var _ VoucherProcessor = (*SRIOrchestrator)(nil)

// ProcessAsync dispara el procesamiento SRI en una goroutine independiente.
// invoiceID es el ID de la factura ya persistida en estado DRAFT.
func (o *SRIOrchestrator) ProcessAsync(invoiceID string) {
	go o.process(invoiceID)
}

// process es el núcleo síncrono del orquestador. Siempre termina actualizando
// sri_status en la DB (AUTORIZADA, DEVUELTA o ERROR_GENERACION).
func (o *SRIOrchestrator) process(invoiceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// markError actualiza la factura a ERROR_GENERACION y hace log del problema.
	markError := func(inv *entity.Invoice, step, msg string) {
		inv.SRIStatus = entity.SRIStatusErrorGeneration
		inv.SRIErrors = msg
		inv.UpdatedAt = time.Now()
		if err := o.invoiceRepo.Update(inv); err != nil {
			o.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("no se pudo persistir ERROR_GENERACION")
		}
		o.log.Error().Str("invoice_id", invoiceID).Str("step", step).Msg(msg)
	}

	// 0. Re-fetch datos frescos (evita data races con el goroutine HTTP)
	inv, err := o.invoiceRepo.GetByID(invoiceID)
	if err != nil || inv == nil {
		o.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("factura no encontrada")
		return
	}
	if inv.SRIStatus != entity.SRIStatusDraft {
		o.log.Warn().Str("invoice_id", invoiceID).Str("sri_status", inv.SRIStatus).Msg("estado inesperado, ya procesada?")
		return
	}

	// PENDIENTE mientras dura el pipeline: el polling del frontend lo distingue
	// de DRAFT (aún no disparada) y de los estados finales.
	inv.SRIStatus = entity.SRIStatusPending
	inv.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(inv); err != nil {
		o.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("error persistiendo PENDIENTE")
		return
	}

	company, err := o.companyRepo.GetByID(inv.CompanyID)
	if err != nil || company == nil {
		markError(inv, "fetch-company", fmt.Sprintf("empresa %s no encontrada: %v", inv.CompanyID, err))
		return
	}
	client, err := o.clientRepo.GetByID(inv.ClientID)
	if err != nil || client == nil {
		markError(inv, "fetch-client", fmt.Sprintf("cliente %s no encontrado: %v", inv.ClientID, err))
		return
	}
	details, err := o.invoiceRepo.GetDetailsByInvoiceID(invoiceID)
	if err != nil {
		markError(inv, "fetch-details", fmt.Sprintf("error obteniendo detalles: %v", err))
		return
	}

	// 1. Construir XML factura v2.1.0 (la clave de acceso ya viene de la creación)
	environment := o.cfg.Environment
	if environment == "" {
		environment = pkgsri.EnvironmentPruebas
	}
	xmlBytes, errXML := o.xmlBuilder.Build(&infrasri.InvoiceBuildContext{
		Invoice:     inv,
		Company:     company,
		Client:      client,
		Details:     details,
		Environment: environment,
	})
	if errXML != nil {
		markError(inv, "xml-build", errXML.Error())
		return
	}

	appEnv := strings.ToLower(strings.TrimSpace(o.cfg.AppEnv))

	// 2. Firma digital XAdES-BES. En dev sin certificado se continúa sin firmar.
	signedXMLBytes := xmlBytes
	if o.cfg.CertPath != "" {
		cert, errCert := loadCertificate(o.cfg)
		if errCert != nil {
			markError(inv, "cert-load", errCert.Error())
			return
		}
		if len(cert.Certificate) == 0 || cert.PrivateKey == nil {
			markError(inv, "cert-load", "certificado vacío: verifica SRI_CERT_PATH y SRI_CERT_PASSWORD")
			return
		}
		signedXMLBytes, err = o.signer.Sign(xmlBytes, cert)
		if err != nil {
			markError(inv, "xml-sign", err.Error())
			return
		}
	} else if appEnv != infrasri.AppEnvDev && appEnv != "" {
		markError(inv, "cert-load", "SRI_CERT_PATH no configurado: obligatorio fuera de dev")
		return
	}

	// FIRMADA: el XML firmado queda disponible para descarga aunque el envío falle.
	inv.XMLSigned = string(signedXMLBytes)
	inv.SRIStatus = entity.SRIStatusSigned
	inv.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(inv); err != nil {
		o.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("error persistiendo FIRMADA")
		return
	}

	// 3. Envío condicional al WS de recepción del SRI
	var finalStatus, authorization, sriErrors string

	switch appEnv {
	case infrasri.AppEnvDev, "":
		o.log.Info().Str("invoice_id", invoiceID).Str("access_key", inv.AccessKey).
			Int("xml_bytes", len(signedXMLBytes)).Msg("dev: simulando autorización SRI")
		authorization = inv.AccessKey
		finalStatus = entity.SRIStatusAuthorized

	case infrasri.AppEnvTest, infrasri.AppEnvProd:
		if o.submitter == nil {
			markError(inv, "soap", "Submitter SRI no inyectado para entorno "+appEnv)
			return
		}
		result, soapErr := o.submitter.SubmitXML(ctx, signedXMLBytes, appEnv)
		if soapErr != nil {
			markError(inv, "soap", soapErr.Error())
			return
		}
		if result.Accepted {
			// RECIBIDA por recepción; la autorización en línea usa la clave de
			// acceso como número de autorización.
			authorization = inv.AccessKey
			finalStatus = entity.SRIStatusAuthorized
			o.log.Info().Str("invoice_id", invoiceID).Str("access_key", inv.AccessKey).Msg("comprobante recibido por el SRI")
		} else {
			finalStatus = entity.SRIStatusRejected
			sriErrors = result.Messages
			o.log.Warn().Str("invoice_id", invoiceID).Str("mensajes", sriErrors).Msg("comprobante devuelto por el SRI")
		}

	default:
		markError(inv, "config", fmt.Sprintf("SRI_APP_ENV desconocido: %q (usar dev|test|prod)", appEnv))
		return
	}

	// 4. Persistir resultado final en DB
	inv.SRIStatus = finalStatus
	inv.Authorization = authorization
	inv.SRIErrors = sriErrors
	inv.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(inv); err != nil {
		o.log.Error().Err(err).Str("invoice_id", invoiceID).Str("sri_status", finalStatus).Msg("error persistiendo estado final")
		return
	}

	o.log.Info().Str("invoice_id", invoiceID).Str("sri_status", finalStatus).Msg("factura procesada")
}

func loadCertificate(cfg SRIProcessConfig) (tls.Certificate, error) {
	lower := strings.ToLower(cfg.CertPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		return signer.LoadFromP12(cfg.CertPath, cfg.CertPassword)
	}
	return signer.LoadFromPEM(cfg.CertPath, cfg.CertKeyPath)
}
