// keyring.go resolves the backend API key from the OS keyring (Linux:
// Secret Service, macOS: Keychain, Windows: Credential Manager) when the
// environment does not provide one.
package config

import (
	"log/slog"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "meimei"

	// keyringAPIKey is the key name for the Gemini API key.
	keyringAPIKey = "gemini_api_key"
)

// StoreAPIKey saves the backend API key to the OS keyring.
func StoreAPIKey(value string) error {
	return keyring.Set(keyringService, keyringAPIKey, value)
}

// ResolveAPIKey fills in the Gemini API key from the OS keyring when the
// environment left it empty. Keyring absence is not an error; generation
// simply stays disabled.
func ResolveAPIKey(cfg *Config, logger *slog.Logger) {
	if cfg.GeminiAPIKey != "" {
		return
	}

	val, err := keyring.Get(keyringService, keyringAPIKey)
	if err != nil {
		logger.Debug("no API key in OS keyring", "error", err)
		return
	}
	if val != "" {
		cfg.GeminiAPIKey = val
		logger.Info("API key loaded from OS keyring")
	}
}
