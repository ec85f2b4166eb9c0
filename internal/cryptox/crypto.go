// Package cryptox seals credential secrets at rest. The sealing key is
// derived from an operator passphrase with argon2id and secrets are
// encrypted with AES-256-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the length of the derived AES-256 key.
const KeySize = 32

var ErrEmptyPassphrase = errors.New("empty vault passphrase")

// DeriveVaultKey stretches passphrase into a KeySize key bound to salt.
func DeriveVaultKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// SecretBox encrypts and decrypts short secrets with a fixed key.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox derives the key from passphrase and salt and prepares AES-GCM.
func NewSecretBox(passphrase, salt string) (*SecretBox, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return newSecretBoxFromKey(DeriveVaultKey([]byte(passphrase), []byte(salt)))
}

func newSecretBoxFromKey(key []byte) (*SecretBox, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SecretBox{aead: aead}, nil
}

// Seal encrypts secret with a fresh random nonce. The ciphertext and nonce
// are returned separately so they can be stored in their own columns.
func (b *SecretBox) Seal(secret string) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return b.aead.Seal(nil, nonce, []byte(secret), nil), nonce, nil
}

// Open decrypts a value produced by Seal.
func (b *SecretBox) Open(ciphertext, nonce []byte) (string, error) {
	if len(nonce) != b.aead.NonceSize() {
		return "", errors.New("invalid nonce size")
	}
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Wipe zeroes b. Use it on plaintext secrets once they are sealed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
