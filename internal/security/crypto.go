// Package security seals configuration files that carry secrets (admin
// token, provider keys, database URL) with a passphrase.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	iterations = 100000

	// SealedSuffix marks a sealed file.
	SealedSuffix = ".enc"
	// envelopeVersion is bumped when the envelope layout changes.
	envelopeVersion = 1
)

// ErrPassphraseRequired is returned when a sealed file is read or written
// without a passphrase.
var ErrPassphraseRequired = errors.New("passphrase required for sealed file")

// envelope is the on-disk JSON form of a sealed file.
type envelope struct {
	Version    int    `json:"v"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func newGCM(passphrase, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(passphrase, salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// Seal encrypts plaintext with AES-256-GCM under a PBKDF2 key and returns the
// JSON envelope.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrPassphraseRequired
	}

	env := envelope{
		Version: envelopeVersion,
		Salt:    make([]byte, saltSize),
		Nonce:   make([]byte, nonceSize),
	}
	if _, err := rand.Read(env.Salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if _, err := rand.Read(env.Nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	gcm, err := newGCM(passphrase, env.Salt)
	if err != nil {
		return nil, err
	}
	env.Ciphertext = gcm.Seal(nil, env.Nonce, plaintext, nil)

	return json.Marshal(env)
}

// Open reverses Seal.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrPassphraseRequired
	}

	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("parse sealed data: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	if len(env.Salt) != saltSize || len(env.Nonce) != nonceSize {
		return nil, fmt.Errorf("malformed envelope")
	}

	gcm, err := newGCM(passphrase, env.Salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: wrong passphrase or corrupted file")
	}
	return plaintext, nil
}

// IsSealed reports whether path names a sealed file.
func IsSealed(path string) bool {
	return strings.HasSuffix(path, SealedSuffix)
}

// ReadFile returns the contents of path, opening it first when it is sealed.
func ReadFile(path string, passphrase []byte) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if !IsSealed(path) {
		return content, nil
	}
	return Open(content, passphrase)
}

// WriteFile seals plaintext into path, adding the suffix when missing, with
// mode 0600. It returns the path written.
func WriteFile(path string, plaintext, passphrase []byte) (string, error) {
	if !IsSealed(path) {
		path += SealedSuffix
	}
	sealed, err := Seal(plaintext, passphrase)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}
