package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	// encryptionMagic is prepended to encrypted backups for
	// identification.
	encryptionMagic = "CCRATES1"

	// Argon2id parameters (RFC 9106 recommendations).
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32 // 256 bits for AES-256

	saltLength = 32
)

// ErrNotEncrypted indicates decrypt was called on plaintext data.
var ErrNotEncrypted = errors.New("data is not an encrypted backup")

// ErrWrongPassword indicates authentication of the ciphertext failed.
var ErrWrongPassword = errors.New("wrong password or corrupted backup")

// IsEncrypted reports whether data carries the encrypted backup header.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(encryptionMagic))
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// EncryptBackup seals plaintext with AES-256-GCM under an argon2id
// derived key. Layout: magic || salt || nonce || ciphertext.
func EncryptBackup(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(encryptionMagic)+saltLength+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, encryptionMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)
	return out, nil
}

// DecryptBackup opens a backup produced by EncryptBackup.
func DecryptBackup(data []byte, password string) ([]byte, error) {
	if !IsEncrypted(data) {
		return nil, ErrNotEncrypted
	}
	data = data[len(encryptionMagic):]

	if len(data) < saltLength {
		return nil, ErrWrongPassword
	}
	salt, data := data[:saltLength], data[saltLength:]

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(data) < gcm.NonceSize() {
		return nil, ErrWrongPassword
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}
