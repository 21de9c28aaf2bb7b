package sri

import "crypto/tls"

// Signer define el puerto de firma digital de comprobantes electrónicos.
// La implementación XAdES-BES vive en infrastructure; para tests se puede
// inyectar un firmador nulo.
type Signer interface {
	// Sign firma el XML del comprobante e inyecta <ds:Signature> como último
	// hijo del elemento raíz, según la Ficha Técnica del SRI.
	Sign(xmlBytes []byte, cert tls.Certificate) ([]byte, error)
}
