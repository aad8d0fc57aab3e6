package config

import (
	"strings"
)

type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Storage  StorageConfig
	Session  SessionConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
}

// ProviderConfig points at the optional remote text-understanding
// service. An empty APIKey means the engine runs lexicon-only: remote
// classification and remote place suggestions are disabled, never
// required.
type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	PlacesModel string
}

type StorageConfig struct {
	DataDir string
}

type SessionConfig struct {
	TTLMinutes int
}

type LogConfig struct {
	Level string
}

// RemoteEnabled reports whether a provider credential is configured.
// Checked once at startup; the decision holds for the process lifetime.
func (c ProviderConfig) RemoteEnabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    4600,
			MCPPort: 4601,
		},
		Provider: ProviderConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       "openai/gpt-4o-mini",
			PlacesModel: "openai/gpt-4o-mini",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Session: SessionConfig{
			TTLMinutes: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.murmur.app) and
// secrets fall back to macOS Keychain. On Linux the backend is a JSON
// file at $XDG_CONFIG_HOME/murmur/config.json and secrets live in a
// secrets file or environment variables.
//
// Environment variables (MURMUR_*) override backend values on all
// platforms. The provider API key is optional: without it the engine
// degrades to lexicon-only classification and static place lists.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret-store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for the provider key if still empty.
	if cfg.Provider.APIKey == "" {
		if key, err := kc.Get("murmur", "provider_api_key"); err == nil && key != "" {
			cfg.Provider.APIKey = key
		}
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
