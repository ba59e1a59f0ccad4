// Package cryptox protects the upload references handed to the browser.
//
// A reference is a small JSON payload (for example {"id":"..."}) sealed
// with AES-256-GCM under a key derived from the application secret. The
// resulting token is URL-safe and opaque to the client.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/filepond/internal/common"
	"golang.org/x/crypto/hkdf"
)

const (
	keySize   = 32
	nonceSize = 12
)

var hkdfInfo = []byte("filepond reference v1")

var encoding = base64.RawURLEncoding

var randReader io.Reader = rand.Reader

// dashPrefix is the first 6-bit group that encodes as '-'.
const dashPrefix = 62

// newNonce draws a nonce whose token does not start with '-', so the
// token is never taken for a command-line flag.
func newNonce() ([]byte, error) {
	nonce := make([]byte, nonceSize)
	for {
		if _, err := io.ReadFull(randReader, nonce); err != nil {
			return nil, err
		}
		if nonce[0]>>2 != dashPrefix {
			return nonce, nil
		}
	}
}

// DeriveKey expands the application secret into a 256-bit AEAD key.
func DeriveKey(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty secret")
	}
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, hkdfInfo), key); err != nil {
		return nil, err
	}
	return key, nil
}

// Crypter encrypts and decrypts reference payloads with a fixed key.
// It is safe for concurrent use.
type Crypter struct {
	aead cipher.AEAD
}

// NewCrypter builds a Crypter from the application secret.
func NewCrypter(secret []byte) (*Crypter, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Crypter{aead: aead}, nil
}

// Encrypt serializes v to JSON and seals it. The token layout is
// base64url(nonce || ciphertext) and never begins with '-'.
func (c *Crypter) Encrypt(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	nonce, err := newNonce()
	if err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return encoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt and unmarshals the payload
// into v. Every failure is reported as common.ErrDecryption.
func (c *Crypter) Decrypt(token string, v any) error {
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: bad encoding", common.ErrDecryption)
	}
	if len(raw) < nonceSize+c.aead.Overhead() {
		return fmt.Errorf("%w: token too short", common.ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: bad payload: %v", common.ErrDecryption, err)
	}
	return nil
}
