// Package security agrupa las primitivas de seguridad de la aplicación:
// cifrado autenticado de campos sensibles, emisión/verificación de tokens,
// hash de contraseñas y protección contra abuso (rate limit / fuerza bruta).
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// associatedData identidad fija de la aplicación, ligada al auth tag de cada
// cifrado. Un payload cifrado por otra aplicación (u otro AAD) no descifra.
const associatedData = "contaec-saas-ecuador"

// gcmTagSize tamaño en bytes del auth tag GCM estándar.
const gcmTagSize = 16

// ErrIntegrity indica que el auth tag no verificó: ciphertext manipulado,
// IV incorrecto o clave distinta. El descifrado falla cerrado.
var ErrIntegrity = errors.New("security: verificación de integridad fallida")

// EncryptedPayload triple (ciphertext, iv, authTag) en hexadecimal.
// Los tres campos son necesarios para descifrar; cualquier alteración
// invalida el auth tag.
type EncryptedPayload struct {
	Ciphertext string `json:"encrypted_data"`
	IV         string `json:"iv"`
	AuthTag    string `json:"auth_tag"`
}

// Crypto cifra y descifra datos sensibles con AES-256-GCM.
// Una instancia por proceso, construida en el arranque e inyectada a los
// consumidores.
type Crypto struct {
	aead cipher.AEAD
}

// NewCrypto construye el servicio con una clave de 32 bytes.
func NewCrypto(key []byte) (*Crypto, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("security: la clave AES-256 debe tener 32 bytes, se recibieron %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("security: inicializar AES: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("security: inicializar GCM: %w", err)
	}
	return &Crypto{aead: aead}, nil
}

// RandomKey genera una clave AES-256 aleatoria. Si la clave no se persiste,
// los datos cifrados con ella son irrecuperables tras un reinicio; el caller
// debe registrar esa advertencia (ver config.Load).
func RandomKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("security: generar clave aleatoria: %w", err)
	}
	return key, nil
}

// Encrypt cifra plaintext con un IV aleatorio por llamada y AAD fijo.
// El auth tag se separa del ciphertext para exponer el triple del contrato.
func (c *Crypto) Encrypt(plaintext string) (*EncryptedPayload, error) {
	iv := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("security: generar IV: %w", err)
	}
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), []byte(associatedData))
	// Seal devuelve ciphertext || tag; el tag son los últimos 16 bytes.
	split := len(sealed) - gcmTagSize
	return &EncryptedPayload{
		Ciphertext: hex.EncodeToString(sealed[:split]),
		IV:         hex.EncodeToString(iv),
		AuthTag:    hex.EncodeToString(sealed[split:]),
	}, nil
}

// Decrypt descifra el triple exacto producido por Encrypt. Un tag que no
// verifica retorna ErrIntegrity sin plaintext parcial.
func (c *Crypto) Decrypt(payload *EncryptedPayload) (string, error) {
	if payload == nil {
		return "", fmt.Errorf("security: payload nulo")
	}
	ciphertext, err := hex.DecodeString(payload.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("security: ciphertext no es hexadecimal: %w", err)
	}
	iv, err := hex.DecodeString(payload.IV)
	if err != nil {
		return "", fmt.Errorf("security: IV no es hexadecimal: %w", err)
	}
	tag, err := hex.DecodeString(payload.AuthTag)
	if err != nil {
		return "", fmt.Errorf("security: auth tag no es hexadecimal: %w", err)
	}
	if len(iv) != c.aead.NonceSize() || len(tag) != gcmTagSize {
		return "", ErrIntegrity
	}
	plaintext, err := c.aead.Open(nil, iv, append(ciphertext, tag...), []byte(associatedData))
	if err != nil {
		return "", ErrIntegrity
	}
	return string(plaintext), nil
}
