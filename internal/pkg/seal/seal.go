package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidSeal is returned for tampered, truncated or foreign values
var ErrInvalidSeal = errors.New("sealed value is invalid")

// Sealer encrypts short values, such as the backend token, for storage in a
// browser cookie
type Sealer struct {
	key []byte
}

// New derives the cipher key from secret
func New(secret string) *Sealer {
	sum := sha256.Sum256([]byte(secret))
	return &Sealer{key: sum[:]}
}

// Seal encrypts plaintext and returns a URL-safe string
func (s *Sealer) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	out := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidSeal
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrInvalidSeal
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidSeal
	}
	return string(plain), nil
}

// HashToken hashes a token using SHA256, for use in cache keys
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
