// Package vault seals and opens the remote server's encrypted files
package vault

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	Iterations = 100_000
	KeySize    = chacha20poly1305.KeySize
	SaltSize   = 16
)

// DefaultSalt is the facility-wide salt for sealed files
var DefaultSalt = []byte("game_salt_fixed")

var (
	ErrDecrypt   = errors.New("decryption failed: invalid data or key")
	ErrMalformed = errors.New("malformed token")
)

// DeriveKey stretches a passphrase into a cipher key
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, Iterations, KeySize, sha256.New)
}

// Cipher seals strings under one derived key
type Cipher struct {
	key []byte
}

// NewCipher derives the key for passphrase and salt
func NewCipher(passphrase string, salt []byte) *Cipher {
	return &Cipher{key: DeriveKey(passphrase, salt)}
}

// Seal encrypts plaintext to URL-safe base64 of nonce‖ciphertext
func (c *Cipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("seal: nonce: %w", err)
	}
	out := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(out), nil
}

// Open reverses Seal; any tampering or wrong key yields ErrDecrypt
func (c *Cipher) Open(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformed
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// HashPassword returns base64(salt‖pbkdf2(password)) with a fresh salt
func HashPassword(password string) (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	sum := pbkdf2.Key([]byte(password), salt, Iterations, sha256.Size, sha256.New)
	return base64.StdEncoding.EncodeToString(append(salt, sum...)), nil
}

// VerifyPassword checks password against a HashPassword result
func VerifyPassword(stored, password string) bool {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || len(raw) != SaltSize+sha256.Size {
		return false
	}
	salt, want := raw[:SaltSize], raw[SaltSize:]
	got := pbkdf2.Key([]byte(password), salt, Iterations, sha256.Size, sha256.New)
	return hmac.Equal(got, want)
}

// HashData returns the hex SHA-256 of data
func HashData(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// MultiHash returns hex digests keyed by algorithm name
func MultiHash(data string) map[string]string {
	algos := map[string]func() hash.Hash{
		"md5":    md5.New,
		"sha1":   sha1.New,
		"sha256": sha256.New,
		"sha512": sha512.New,
	}
	out := make(map[string]string, len(algos))
	for name, newHash := range algos {
		h := newHash()
		h.Write([]byte(data))
		out[name] = hex.EncodeToString(h.Sum(nil))
	}
	return out
}
