package sri

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	soapURLTest = "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"
	soapURLProd = "https://cel.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"

	soapNS          = "http://schemas.xmlsoap.org/soap/envelope/"
	soapNSRecepcion = "http://ec.gob.sri.ws.recepcion"
)

// Estados devueltos por el WS de recepción.
const (
	EstadoRecibida = "RECIBIDA"
	EstadoDevuelta = "DEVUELTA"
)

// SOAPClient implementa Submitter usando el WS de recepción del SRI.
// Usa net/http de la stdlib; no requiere librerías de terceros.
type SOAPClient struct {
	httpClient *http.Client
}

// NewSOAPClient construye el cliente SOAP con un timeout de red generoso (60 s)
// ya que el WS del SRI puede tardar varios segundos en responder.
func NewSOAPClient() *SOAPClient {
	return &SOAPClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ── Estructuras SOAP ──────────────────────────────────────────────────────────

type soapEnvelope struct {
	XMLName xml.Name   `xml:"soapenv:Envelope"`
	XmlnsS  string     `xml:"xmlns:soapenv,attr"`
	XmlnsEC string     `xml:"xmlns:ec,attr"`
	Header  soapHeader `xml:"soapenv:Header"`
	Body    soapBody   `xml:"soapenv:Body"`
}

type soapHeader struct{}

type soapBody struct {
	Validar validarComprobanteBody `xml:"ec:validarComprobante"`
}

// validarComprobanteBody cuerpo de la operación validarComprobante.
type validarComprobanteBody struct {
	XML string `xml:"xml"` // comprobante firmado en Base64
}

// ── Estructuras de respuesta SOAP ─────────────────────────────────────────────

type soapResponseEnvelope struct {
	Body soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	ValidarResponse *validarComprobanteResponse `xml:"validarComprobanteResponse"`
	Fault           *soapFault                  `xml:"Fault"`
}

type validarComprobanteResponse struct {
	Respuesta respuestaRecepcion `xml:"RespuestaRecepcionComprobante"`
}

type respuestaRecepcion struct {
	Estado       string              `xml:"estado"`
	Comprobantes []comprobanteDetail `xml:"comprobantes>comprobante"`
}

type comprobanteDetail struct {
	ClaveAcceso string            `xml:"claveAcceso"`
	Mensajes    []mensajeRecepcion `xml:"mensajes>mensaje"`
}

type mensajeRecepcion struct {
	Identificador        string `xml:"identificador"`
	Mensaje              string `xml:"mensaje"`
	InformacionAdicional string `xml:"informacionAdicional"`
	Tipo                 string `xml:"tipo"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// ── SubmitXML ─────────────────────────────────────────────────────────────────

// SubmitXML envía el comprobante firmado al WS de recepción del SRI.
func (c *SOAPClient) SubmitXML(ctx context.Context, signedXML []byte, env string) (*ReceptionResult, error) {
	var soapURL string
	switch env {
	case AppEnvProd:
		soapURL = soapURLProd
	case AppEnvTest:
		soapURL = soapURLTest
	default:
		return nil, fmt.Errorf("soap: entorno desconocido %q (usar 'test' o 'prod')", env)
	}

	envelope := soapEnvelope{
		XmlnsS:  soapNS,
		XmlnsEC: soapNSRecepcion,
		Body: soapBody{
			Validar: validarComprobanteBody{
				XML: base64.StdEncoding.EncodeToString(signedXML),
			},
		},
	}
	xmlPayload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("soap: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, soapURL,
		bytes.NewReader(xmlPayload))
	if err != nil {
		return nil, fmt.Errorf("soap: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("soap: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("soap: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("soap: leer respuesta: %w", err)
	}

	return parseReceptionResponse(rawBody)
}

// parseReceptionResponse desempaqueta la respuesta SOAP y extrae estado y mensajes.
func parseReceptionResponse(rawBody []byte) (*ReceptionResult, error) {
	var envResp soapResponseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		// Si no podemos parsear, devolvemos el raw como error pero no abortamos.
		return &ReceptionResult{
			Accepted: false,
			Messages: fmt.Sprintf("no se pudo parsear respuesta SOAP: %s", string(rawBody)),
		}, nil
	}

	// SOAP Fault (error de protocolo, autenticación, etc.)
	if envResp.Body.Fault != nil {
		return &ReceptionResult{
			Accepted: false,
			Messages: fmt.Sprintf("SOAP Fault [%s]: %s", envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString),
		}, nil
	}

	if envResp.Body.ValidarResponse == nil {
		return &ReceptionResult{
			Accepted: false,
			Messages: "respuesta SOAP vacía o inesperada: " + string(rawBody),
		}, nil
	}

	respuesta := envResp.Body.ValidarResponse.Respuesta
	var msgs []string
	for _, comp := range respuesta.Comprobantes {
		for _, m := range comp.Mensajes {
			msg := m.Identificador + ": " + m.Mensaje
			if m.InformacionAdicional != "" {
				msg += " (" + m.InformacionAdicional + ")"
			}
			msgs = append(msgs, msg)
		}
	}
	return &ReceptionResult{
		Estado:   respuesta.Estado,
		Accepted: respuesta.Estado == EstadoRecibida,
		Messages: strings.Join(msgs, "; "),
	}, nil
}

var _ Submitter = (*SOAPClient)(nil)
