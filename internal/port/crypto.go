package port

// SecretCodec encrypts and decrypts opaque secret strings, used to protect
// OAuth refresh tokens at rest. Implementations must authenticate the
// ciphertext so tampering is detected on decrypt.
type SecretCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
