package encryption_test

import (
	"strings"
	"testing"

	"github.com/connexa-app/connexa/encryption"
)

func TestRoundTrip(t *testing.T) {
	for _, alg := range []encryption.Algorithm{encryption.AlgorithmAESGCM, encryption.AlgorithmChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			enc, err := encryption.New("passphrase", alg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			sealed, err := enc.Encrypt(`{"token":"abc","timestamp":123}`)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			opened, err := enc.Decrypt(sealed)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if opened != `{"token":"abc","timestamp":123}` {
				t.Errorf("round-trip mismatch: %s", opened)
			}
		})
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	enc, _ := encryption.New("passphrase", encryption.AlgorithmAESGCM)
	sealed, _ := enc.Encrypt("payload")

	// Flip a character in the middle of the blob.
	mid := len(sealed) / 2
	flipped := sealed[:mid] + flip(sealed[mid:mid+1]) + sealed[mid+1:]
	if _, err := enc.Decrypt(flipped); err == nil {
		t.Error("tampered blob decrypted")
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc, _ := encryption.New("key-one", encryption.AlgorithmAESGCM)
	other, _ := enc.Encrypt("payload")

	enc2, _ := encryption.New("key-two", encryption.AlgorithmAESGCM)
	if _, err := enc2.Decrypt(other); err == nil {
		t.Error("blob decrypted with wrong key")
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	enc, _ := encryption.New("passphrase", encryption.AlgorithmAESGCM)

	if _, err := enc.Decrypt("not base64 !!!"); err == nil {
		t.Error("non-base64 blob accepted")
	}
	if _, err := enc.Decrypt("YWJj"); err == nil { // 3 bytes, shorter than any nonce
		t.Error("too-short blob accepted")
	}
}

func TestNew_UnsupportedAlgorithm(t *testing.T) {
	if _, err := encryption.New("k", encryption.Algorithm("rot13")); err == nil {
		t.Error("unsupported algorithm accepted")
	}
}

func flip(s string) string {
	if strings.ToUpper(s) != s {
		return strings.ToUpper(s)
	}
	return strings.ToLower(s)
}
