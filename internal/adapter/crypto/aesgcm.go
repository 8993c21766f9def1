package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	ivLength  = 16
	tagLength = 16
)

// AESGCMCodec implements port.SecretCodec using AES-256-GCM.
// Ciphertext layout is hex(iv || authTag || encrypted), so blobs written
// by earlier deployments of the token store remain readable.
type AESGCMCodec struct {
	aead cipher.AEAD
}

// NewAESGCMCodec creates a codec from a hex-encoded 32-byte key.
func NewAESGCMCodec(hexKey string) (*AESGCMCodec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &AESGCMCodec{aead: aead}, nil
}

// Encrypt encrypts the plaintext and returns hex(iv || authTag || ciphertext).
func (c *AESGCMCodec) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	// Seal appends the tag after the ciphertext; the stored layout puts it first.
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	encrypted := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	out := make([]byte, 0, ivLength+tagLength+len(encrypted))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, encrypted...)

	return hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt, failing if the ciphertext was tampered with.
func (c *AESGCMCodec) Decrypt(ciphertext string) (string, error) {
	buf, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(buf) < ivLength+tagLength {
		return "", fmt.Errorf("ciphertext too short: %d bytes", len(buf))
	}

	iv := buf[:ivLength]
	tag := buf[ivLength : ivLength+tagLength]
	encrypted := buf[ivLength+tagLength:]

	sealed := make([]byte, 0, len(encrypted)+tagLength)
	sealed = append(sealed, encrypted...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt data: %w", err)
	}

	return string(plaintext), nil
}
