package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// sealDerivationMessage is signed with the user's SSH key and the hash of the
// signature becomes the AES key. Changing it invalidates sealed tokens.
const sealDerivationMessage = "dealchat-token-key-derivation-v1"

// tokenSealer encrypts the credential file with AES-GCM under a key derived
// from an SSH private key. Sealed output is [nonce][ciphertext+tag].
type tokenSealer struct {
	aead cipher.AEAD
}

func newTokenSealer(keyPath, passphrase string) (*tokenSealer, error) {
	signer, err := loadSigner(keyPath, passphrase)
	if err != nil {
		return nil, err
	}

	// Ed25519 and RSA PKCS#1 v1.5 signatures are deterministic
	signature, err := signer.Sign(rand.Reader, []byte(sealDerivationMessage))
	if err != nil {
		return nil, fmt.Errorf("failed to sign derivation message: %w", err)
	}
	key := sha256.Sum256(signature.Blob)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if Debug && DebugLog != nil {
		DebugLog.Printf("[TokenSeal] Derived sealing key from %s (%s)", keyPath, signer.PublicKey().Type())
	}
	return &tokenSealer{aead: aead}, nil
}

func (s *tokenSealer) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *tokenSealer) open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, fmt.Errorf("sealed data too short")
	}

	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// loadSigner parses the private key, using passphrase only when the key
// is encrypted.
func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err == nil {
		return signer, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("failed to parse SSH key: %w", err)
	}
	if passphrase == "" {
		return nil, fmt.Errorf("SSH key is encrypted - passphrase required")
	}

	signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key (wrong passphrase?): %w", err)
	}
	return signer, nil
}

// IsSSHKeyEncrypted reports whether the key needs a passphrase, without
// attempting to decrypt it.
func IsSSHKeyEncrypted(keyPath string) (bool, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return false, fmt.Errorf("failed to read SSH key: %w", err)
	}

	_, err = ssh.ParsePrivateKey(keyData)
	if err == nil {
		return false, nil
	}

	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) || strings.Contains(err.Error(), "passphrase") {
		return true, nil
	}

	return false, fmt.Errorf("invalid SSH key: %w", err)
}
