// Package creds stores API tokens for tracker connections in a single
// encrypted file. Tokens never touch disk in plaintext: the file body is
// a JSON map of connection name to token, sealed with AES-256-GCM under
// an Argon2id-derived key.
package creds

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4

	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

// ErrNoToken is returned when no token is stored for a connection.
var ErrNoToken = errors.New("no token stored for connection")

// ErrBadPassphrase is returned when the store cannot be decrypted,
// which almost always means a wrong passphrase.
var ErrBadPassphrase = errors.New("cannot decrypt credential store: wrong passphrase or corrupt file")

// Store is an encrypted token store bound to one file and passphrase.
// It holds the decrypted tokens in memory after Open; Save re-seals
// with a fresh salt and nonce every time.
type Store struct {
	path       string
	passphrase string
	tokens     map[string]string
}

// Open loads the store at path, creating an empty one when the file
// does not exist yet.
func Open(path, passphrase string) (*Store, error) {
	s := &Store{
		path:       path,
		passphrase: passphrase,
		tokens:     make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential store: %w", err)
	}

	plaintext, err := unseal(data, passphrase)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(plaintext, &s.tokens); err != nil {
		return nil, fmt.Errorf("parse credential store: %w", err)
	}
	return s, nil
}

// Token returns the stored token for a connection.
func (s *Store) Token(connection string) (string, error) {
	token, ok := s.tokens[connection]
	if !ok {
		return "", fmt.Errorf("connection %q: %w", connection, ErrNoToken)
	}
	return token, nil
}

// Set stores or replaces a connection's token in memory. Save persists it.
func (s *Store) Set(connection, token string) {
	s.tokens[connection] = token
}

// Delete removes a connection's token in memory.
func (s *Store) Delete(connection string) {
	delete(s.tokens, connection)
}

// Connections lists connection names with a stored token.
func (s *Store) Connections() []string {
	names := make([]string, 0, len(s.tokens))
	for name := range s.tokens {
		names = append(names, name)
	}
	return names
}

// Save seals the tokens and writes them to the store file with
// owner-only permissions.
func (s *Store) Save() error {
	plaintext, err := json.Marshal(s.tokens)
	if err != nil {
		return fmt.Errorf("encode credential store: %w", err)
	}
	sealed, err := seal(plaintext, s.passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, sealed, 0o600); err != nil {
		return fmt.Errorf("write credential store: %w", err)
	}
	return nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, keySize)
}

// seal encrypts plaintext as salt (16) + nonce (12) + ciphertext.
func seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

func unseal(data []byte, passphrase string) ([]byte, error) {
	minLen := saltSize + nonceSize + 16 // 16 is the GCM tag size
	if len(data) < minLen {
		return nil, ErrBadPassphrase
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+nonceSize]
	ciphertext := data[saltSize+nonceSize:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return plaintext, nil
}
