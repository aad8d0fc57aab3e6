package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	tokenService = "murmur"
	tokenAccount = "api_token"
)

// Keychain abstracts the platform secret store so the API token flow
// can be tested without touching real secrets.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

type platformKeychain struct{}

func (platformKeychain) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (platformKeychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

// NewKeychain returns the platform-native secret store.
func NewKeychain() Keychain {
	return platformKeychain{}
}

// GetAPIToken returns the bearer token used between the CLI and the
// local server, generating and storing one on first use.
func GetAPIToken(kc Keychain) (string, error) {
	if token, err := kc.Get(tokenService, tokenAccount); err == nil && token != "" {
		return token, nil
	}

	token := uuid.NewString()
	if err := kc.Set(tokenService, tokenAccount, token); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return token, nil
}
