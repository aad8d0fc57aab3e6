package config

import (
	"errors"
	"testing"
)

// mockBackend is an in-memory ConfigBackend for tests.
type mockBackend struct {
	strings map[string]string
	ints    map[string]int
}

func (m *mockBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *mockBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *mockBackend) SetString(key, value string) error {
	if m.strings == nil {
		m.strings = make(map[string]string)
	}
	m.strings[key] = value
	return nil
}

func (m *mockBackend) SetInt(key string, value int) error {
	if m.ints == nil {
		m.ints = make(map[string]int)
	}
	m.ints[key] = value
	return nil
}

func (m *mockBackend) Delete(key string) error {
	delete(m.strings, key)
	delete(m.ints, key)
	return nil
}

// mockKeychain is a test double for the keychain interface.
type mockKeychain struct {
	value string
	err   error
}

func (m mockKeychain) Get(service, account string) (string, error) {
	return m.value, m.err
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies default values when the backend is empty.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(&mockBackend{}, mockKeychain{err: errors.New("no secret")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4600 {
		t.Errorf("Server.Port = %d, want 4600", cfg.Server.Port)
	}
	if cfg.Server.MCPPort != 4601 {
		t.Errorf("Server.MCPPort = %d, want 4601", cfg.Server.MCPPort)
	}
	if cfg.Provider.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("Provider.BaseURL = %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Model != "openai/gpt-4o-mini" {
		t.Errorf("Provider.Model = %q", cfg.Provider.Model)
	}
	if cfg.Session.TTLMinutes != 30 {
		t.Errorf("Session.TTLMinutes = %d, want 30", cfg.Session.TTLMinutes)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

// TestBackendValues verifies that backend values override defaults.
func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := &mockBackend{
		strings: map[string]string{
			"provider.model":   "openai/gpt-4o",
			"storage.data_dir": "/tmp/murmur-test",
		},
		ints: map[string]int{
			"server.port":         5600,
			"session.ttl_minutes": 45,
		},
	}

	cfg, err := loadWith(b, mockKeychain{err: errors.New("no secret")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5600 {
		t.Errorf("Server.Port = %d, want 5600", cfg.Server.Port)
	}
	if cfg.Provider.Model != "openai/gpt-4o" {
		t.Errorf("Provider.Model = %q", cfg.Provider.Model)
	}
	if cfg.Storage.DataDir != "/tmp/murmur-test" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Session.TTLMinutes != 45 {
		t.Errorf("Session.TTLMinutes = %d, want 45", cfg.Session.TTLMinutes)
	}
}

// TestEnvOverride verifies that environment variables win over backend values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("MURMUR_SERVER_PORT", "7000")
	t.Setenv("MURMUR_PROVIDER_API_KEY", "env-key")

	b := &mockBackend{ints: map[string]int{"server.port": 5600}}

	cfg, err := loadWith(b, mockKeychain{err: errors.New("no secret")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Provider.APIKey != "env-key" {
		t.Errorf("Provider.APIKey = %q, want %q", cfg.Provider.APIKey, "env-key")
	}
	if !cfg.Provider.RemoteEnabled() {
		t.Error("RemoteEnabled() = false, want true")
	}
}

// TestMissingAPIKey verifies the key is optional and leaves remote features off.
func TestMissingAPIKey(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(&mockBackend{}, mockKeychain{err: errors.New("no secret")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider.APIKey != "" {
		t.Errorf("Provider.APIKey = %q, want empty", cfg.Provider.APIKey)
	}
	if cfg.Provider.RemoteEnabled() {
		t.Error("RemoteEnabled() = true, want false")
	}
}

// TestKeychainFallback verifies the secret store is consulted when no
// API key comes from the backend or environment.
func TestKeychainFallback(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(&mockBackend{}, mockKeychain{value: "keychain-secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider.APIKey != "keychain-secret" {
		t.Errorf("Provider.APIKey = %q, want %q", cfg.Provider.APIKey, "keychain-secret")
	}
}

// storeKeychain is a read/write secret store double for token tests.
type storeKeychain struct {
	values map[string]string
}

func (s *storeKeychain) Get(service, account string) (string, error) {
	v, ok := s.values[service+"/"+account]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (s *storeKeychain) Set(service, account, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[service+"/"+account] = value
	return nil
}

// TestGetAPITokenGenerates verifies a token is minted and persisted on
// first use, then returned unchanged afterwards.
func TestGetAPITokenGenerates(t *testing.T) {
	kc := &storeKeychain{}

	first, err := GetAPIToken(kc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == "" {
		t.Fatal("GetAPIToken returned empty token")
	}

	second, err := GetAPIToken(kc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Errorf("second token = %q, want stored %q", second, first)
	}
}

// TestSetKeyRejectsSecret verifies secrets cannot be written via SetKey.
func TestSetKeyRejectsSecret(t *testing.T) {
	if err := SetKey("provider.api_key", "oops"); err == nil {
		t.Fatal("expected error setting secret key, got nil")
	}
}

// TestValidKeys verifies secrets are excluded from the settable key list.
func TestValidKeys(t *testing.T) {
	for _, k := range ValidKeys() {
		if k == "provider.api_key" {
			t.Fatal("ValidKeys() includes secret provider.api_key")
		}
	}
	if len(ValidKeys()) != len(specs)-1 {
		t.Errorf("ValidKeys() length = %d, want %d", len(ValidKeys()), len(specs)-1)
	}
}
