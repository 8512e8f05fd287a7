package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/threethings/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested name
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names a value kept in the OS keyring
type Secret string

const (
	SecretConnectionString Secret = constants.DefaultKeyringUser
	SecretGeneratorKey     Secret = constants.GeneratorKeyUser
)

// ParseSecret maps a command-line name to a Secret
func ParseSecret(name string) (Secret, error) {
	switch name {
	case "connection-string", string(SecretConnectionString):
		return SecretConnectionString, nil
	case "generator-key", string(SecretGeneratorKey):
		return SecretGeneratorKey, nil
	}
	return "", fmt.Errorf("unknown secret %q (expected connection-string or generator-key)", name)
}

// Get retrieves a secret from the OS keyring.
// Returns ErrNotFound if nothing is stored.
func Get(secret Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(secret))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores a secret in the OS keyring.
func Set(secret Secret, value string) error {
	if value == "" {
		return errors.New("secret value cannot be empty")
	}
	if err := keyring.Set(constants.AppName, string(secret), value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes a secret from the OS keyring.
func Delete(secret Secret) error {
	if err := keyring.Delete(constants.AppName, string(secret)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Lookup returns the secret or "" when it is missing or the keyring is unavailable.
func Lookup(secret Secret) string {
	value, err := Get(secret)
	if err != nil {
		return ""
	}
	return value
}
