// Package secret keeps per-calendar feed tokens in the OS keyring.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-agenda/internal/config"
	"github.com/zalando/go-keyring"
)

// Vault stores one token per calendar under Service.
type Vault struct {
	Service string
}

// NewVault returns a vault using the application's keyring service name.
func NewVault() *Vault {
	return &Vault{Service: config.KeyringService}
}

// Token returns the calendar's token, or "" when none is stored.
func (v *Vault) Token(calendar string) (string, error) {
	token, err := keyring.Get(v.Service, calendar)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return token, nil
}

func (v *Vault) SetToken(calendar, token string) error {
	if err := keyring.Set(v.Service, calendar, token); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	slog.Info(config.MsgTokenStored,
		config.LogKeyComponent, config.CompSecret,
		config.LogKeyCalendar, calendar,
	)
	return nil
}

// ClearToken removes the calendar's token. Clearing a missing token is not an error.
func (v *Vault) ClearToken(calendar string) error {
	err := keyring.Delete(v.Service, calendar)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return nil
}

// Generate returns a random hex token.
func Generate() (string, error) {
	buf := make([]byte, config.TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrTokenGenerate, err)
	}
	return hex.EncodeToString(buf), nil
}
