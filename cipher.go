// FILE: confull/cipher.go
package confull

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed file layout: magic header, 16-byte random per-save salt, 24-byte
// XChaCha20-Poly1305 nonce, ciphertext (with the AEAD tag appended).
var sealMagic = []byte("CONFULLSEALEDv1\n")

const (
	sealSaltSize  = 16
	sealNonceSize = chacha20poly1305.NonceSizeX
)

// Argon2id parameters. The derivation is deterministic per (password, salt),
// so the raw password never needs to be persisted.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = chacha20poly1305.KeySize
)

// cipher seals and opens serialized configuration bytes with a password.
// A nil *cipher (no password configured) is a passthrough.
type cipher struct {
	password string
}

func newCipher(password string) *cipher {
	if password == "" {
		return nil
	}
	return &cipher{password: password}
}

func (c *cipher) deriveKey(salt []byte) []byte {
	return argon2.IDKey([]byte(c.password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Seal encrypts plaintext and binds an integrity tag over it. Each call
// draws a fresh salt and nonce, so identical trees produce distinct files.
func (c *cipher) Seal(plaintext []byte) ([]byte, error) {
	if c == nil {
		return plaintext, nil
	}

	salt := make([]byte, sealSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	nonce := make([]byte, sealNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	aead, err := chacha20poly1305.NewX(c.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+sealSaltSize+sealNonceSize+len(plaintext)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, sealMagic), nil
}

// Open verifies the integrity tag and decrypts. A tag mismatch — tampering,
// corruption, or a wrong password — fails with ErrIntegrity before any
// plaintext leaves this layer.
func (c *cipher) Open(data []byte) ([]byte, error) {
	if c == nil {
		if isSealed(data) {
			return nil, ErrPasswordRequired
		}
		return data, nil
	}
	if !isSealed(data) {
		// Plaintext file under a password-configured store: accept it; the
		// next flush seals it.
		return data, nil
	}

	blob := data[len(sealMagic):]
	if len(blob) < sealSaltSize+sealNonceSize {
		return nil, ErrIntegrity
	}
	salt := blob[:sealSaltSize]
	nonce := blob[sealSaltSize : sealSaltSize+sealNonceSize]
	ciphertext := blob[sealSaltSize+sealNonceSize:]

	aead, err := chacha20poly1305.NewX(c.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, sealMagic)
	if err != nil {
		return nil, ErrIntegrity
	}
	return plaintext, nil
}

// isSealed reports whether data carries the sealed-file magic header.
func isSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealMagic)
}
