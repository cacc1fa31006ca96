// Package secrets stores API credentials in the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service groups the app's secrets in the OS keychain.
const Service = "jobradar"

// Well-known accounts.
const (
	AccountSerpAPI = "serpapi"
	AccountOpenAI  = "openai"
	AccountGemini  = "gemini"
	AccountSlack   = "slack-webhook"
)

// Accounts lists every account the CLI knows how to manage.
var Accounts = []string{AccountSerpAPI, AccountOpenAI, AccountGemini, AccountSlack}

// ErrNotFound is returned when the keychain holds no value for an account.
var ErrNotFound = errors.New("secret not found")

// Get reads the secret stored for account.
func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	v, err := keyring.Get(Service, account)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(v) == "") {
		return "", fmt.Errorf("%s: %w", account, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %s: %w", account, err)
	}
	return v, nil
}

// Set stores value for account, replacing any previous value.
func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(Service, account, value)
}

// Delete removes account's secret.
func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if err := keyring.Delete(Service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%s: %w", account, ErrNotFound)
		}
		return fmt.Errorf("keyring delete %s: %w", account, err)
	}
	return nil
}
