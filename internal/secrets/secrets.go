package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "gighunt"

	EnvTelegramToken = "TELEGRAM_BOT_TOKEN"
	EnvLLMKey        = "LLM_API_KEY"
)

var ErrNotFound = errors.New("secret not found")

// Lookup reads a secret from the keychain first and falls back to the
// environment variable env. Blank values count as missing.
func Lookup(keyringAccount, env string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		v, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}
	if env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w (keychain account %q, env %s)", ErrNotFound, keyringAccount, env)
}

func TelegramToken(keyringAccount string) (string, error) {
	return Lookup(keyringAccount, EnvTelegramToken)
}

func LLMKey(keyringAccount string) (string, error) {
	return Lookup(keyringAccount, EnvLLMKey)
}

func Set(keyringAccount, value string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, value)
}

func Delete(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if err := keyring.Delete(KeyringService, keyringAccount); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Has reports whether the keychain holds a non-empty secret for the account.
func Has(keyringAccount string) bool {
	if strings.TrimSpace(keyringAccount) == "" {
		return false
	}
	v, err := keyring.Get(KeyringService, keyringAccount)
	return err == nil && strings.TrimSpace(v) != ""
}
