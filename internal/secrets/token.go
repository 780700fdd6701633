package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups the engine's secrets in the OS keychain.
	KeyringService = "govsignal"

	adminTokenAccount = "admin-token"
)

// GetAdminToken returns the stored admin token, the secret guarding
// privileged endpoints like /shutdown.
func GetAdminToken() (string, error) {
	tok, err := keyring.Get(KeyringService, adminTokenAccount)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(tok) == "" {
		return "", errors.New("admin token is empty")
	}
	return tok, nil
}

func SetAdminToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, adminTokenAccount, token)
}

func DeleteAdminToken() error {
	return keyring.Delete(KeyringService, adminTokenAccount)
}

// EnsureAdminToken returns the stored admin token, minting and storing
// a fresh one when the keychain has none. Headless hosts without a
// usable keychain still get a token; it just does not survive a
// restart.
func EnsureAdminToken() (string, error) {
	if tok, err := GetAdminToken(); err == nil {
		return tok, nil
	}
	tok, err := NewToken(32)
	if err != nil {
		return "", err
	}
	if err := keyring.Set(KeyringService, adminTokenAccount, tok); err != nil {
		return tok, nil
	}
	return tok, nil
}

// NewToken returns n random bytes, hex encoded.
func NewToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
