// Package cryptox holds the symmetric primitives used to protect task fields
// and account passwords at rest.
//
// Every field is sealed with AES-GCM under a fresh random 12-byte IV. The
// ciphertext and the IV are both Base64-encoded (standard alphabet) so they
// can live in TEXT columns next to each other; decryption needs both.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// IVSize is the GCM nonce length used for every field.
const IVSize = 12

// KeySize is the size of generated AES keys (AES-256).
const KeySize = 32

var (
	ErrMissingIV           = errors.New("missing initialization vector")
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	ErrDecrypt             = errors.New("decryption failed")
	ErrInvalidKey          = errors.New("invalid AES key length")
)

// randReader is a test seam for the IV source.
var randReader io.Reader = rand.Reader

// Sealed is a Base64-encoded ciphertext paired with the IV it was sealed under.
type Sealed struct {
	Ciphertext string
	IV         string
}

// FieldCipher encrypts and decrypts individual string fields.
// It is safe for concurrent use.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher builds an AES-GCM cipher. key must be 16, 24 or 32 bytes.
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidKey, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &FieldCipher{aead: aead}, nil
}

// EncryptString seals plain under a new random IV.
func (c *FieldCipher) EncryptString(plain string) (Sealed, error) {
	ct, iv, err := c.Encrypt([]byte(plain))
	if err != nil {
		return Sealed{}, err
	}
	return Sealed{
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// DecryptString opens a value produced by EncryptString.
func (c *FieldCipher) DecryptString(s Sealed) (string, error) {
	if s.IV == "" {
		return "", ErrMissingIV
	}
	if s.Ciphertext == "" {
		return "", ErrMalformedCiphertext
	}

	iv, err := base64.StdEncoding.DecodeString(s.IV)
	if err != nil || len(iv) != c.aead.NonceSize() {
		return "", ErrMissingIV
	}
	ct, err := base64.StdEncoding.DecodeString(s.Ciphertext)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	plain, err := c.Decrypt(ct, iv)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Encrypt seals raw bytes and returns ciphertext and IV separately.
func (c *FieldCipher) Encrypt(plaintext []byte) (ciphertext, iv []byte, err error) {
	iv = make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(randReader, iv); err != nil {
		return nil, nil, err
	}
	return c.aead.Seal(nil, iv, plaintext, nil), iv, nil
}

// Decrypt opens raw bytes sealed by Encrypt.
func (c *FieldCipher) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	if len(iv) != c.aead.NonceSize() {
		return nil, ErrMissingIV
	}
	plain, err := c.aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// GenerateKey returns a new random AES-256 key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(randReader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveKey stretches a passphrase into a 32-byte key-encryption key (argon2id).
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// DeriveSubkey derives a purpose-bound 32-byte key from key via HKDF-SHA256.
// info must differ per purpose.
func DeriveSubkey(key []byte, info string) ([]byte, error) {
	out := make([]byte, 32)
	r := hkdf.New(sha256.New, key, nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal compares a and b in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
