// Package encryption provides the symmetric blob encryption used by the
// client-side secure token store. Values are AEAD-sealed and base64-encoded.
//
// This is obfuscation against casual inspection of persisted state, not a
// security boundary: the key necessarily lives alongside the client. The
// real boundary is the server's token verification.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor seals and opens string blobs.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Algorithm selects the AEAD cipher.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM (default).
	AlgorithmAESGCM Algorithm = "aes-256-gcm"

	// AlgorithmChaCha20 is ChaCha20-Poly1305, faster on CPUs without
	// AES hardware.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

// ErrCiphertextTooShort indicates a blob shorter than the nonce.
var ErrCiphertextTooShort = errors.New("encryption: ciphertext too short")

// New creates an Encryptor for the given algorithm. The key is hashed with
// SHA-256 to a consistent 32 bytes, so any passphrase works.
func New(key string, alg Algorithm) (Encryptor, error) {
	keyBytes := deriveKey(key)
	switch alg {
	case AlgorithmChaCha20:
		aead, err := chacha20poly1305.New(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("encryption: chacha20: %w", err)
		}
		return &aeadEncryptor{aead: aead}, nil
	case AlgorithmAESGCM, "":
		block, err := aes.NewCipher(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("encryption: aes: %w", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("encryption: gcm: %w", err)
		}
		return &aeadEncryptor{aead: gcm}, nil
	default:
		return nil, fmt.Errorf("encryption: unsupported algorithm: %s", alg)
	}
}

type aeadEncryptor struct {
	aead cipher.AEAD
}

// Encrypt seals plaintext with a fresh random nonce and returns
// base64(nonce || ciphertext).
func (e *aeadEncryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("encryption: nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a base64(nonce || ciphertext) blob. Any tampering fails
// the AEAD authentication check.
func (e *aeadEncryptor) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("encryption: decode base64: %w", err)
	}
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return "", ErrCiphertextTooShort
	}
	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("encryption: open: %w", err)
	}
	return string(plaintext), nil
}

func deriveKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}
