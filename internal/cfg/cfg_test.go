package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name: "valid config with required fields",
			envVars: map[string]string{
				"ADVISORY_URL": "https://advisor.example.com/api/ai-suggestions",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.AdvisoryURL != "https://advisor.example.com/api/ai-suggestions" {
					t.Errorf("unexpected AdvisoryURL %s", settings.AdvisoryURL)
				}
				// Defaults
				if settings.DefaultPair != "ETH/USD" {
					t.Errorf("expected default pair ETH/USD, got %s", settings.DefaultPair)
				}
				if settings.ListenPort != 8080 {
					t.Errorf("expected default port 8080, got %d", settings.ListenPort)
				}
				if settings.RESTTimeout != 10*time.Second {
					t.Errorf("expected default timeout 10s, got %v", settings.RESTTimeout)
				}
				if settings.DataPath != "" {
					t.Errorf("expected empty data path, got %s", settings.DataPath)
				}
			},
		},
		{
			name: "custom settings",
			envVars: map[string]string{
				"ADVISORY_URL":     "https://advisor.example.com",
				"ADVISORY_API_KEY": "sk-test",
				"NOTIFY_URL":       "https://host.example.com/notify",
				"DEFAULT_PAIR":     "BTC/USD",
				"DATA_PATH":        "/tmp/data",
				"LISTEN_PORT":      "9090",
				"REST_TIMEOUT":     "3s",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.AdvisoryAPIKey != "sk-test" {
					t.Errorf("unexpected API key %s", settings.AdvisoryAPIKey)
				}
				if settings.NotifyURL != "https://host.example.com/notify" {
					t.Errorf("unexpected notify URL %s", settings.NotifyURL)
				}
				if settings.DefaultPair != "BTC/USD" {
					t.Errorf("unexpected pair %s", settings.DefaultPair)
				}
				if settings.ListenPort != 9090 {
					t.Errorf("unexpected port %d", settings.ListenPort)
				}
				if settings.RESTTimeout != 3*time.Second {
					t.Errorf("unexpected timeout %v", settings.RESTTimeout)
				}
			},
		},
		{
			name:    "missing advisory URL",
			envVars: map[string]string{},
			wantErr: true,
		},
		{
			name: "port out of range",
			envVars: map[string]string{
				"ADVISORY_URL": "https://advisor.example.com",
				"LISTEN_PORT":  "80",
			},
			wantErr: true,
		},
		{
			name: "timeout out of range",
			envVars: map[string]string{
				"ADVISORY_URL": "https://advisor.example.com",
				"REST_TIMEOUT": "10m",
			},
			wantErr: true,
		},
		{
			name: "unparseable timeout falls back",
			envVars: map[string]string{
				"ADVISORY_URL": "https://advisor.example.com",
				"REST_TIMEOUT": "soon",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.RESTTimeout != 10*time.Second {
					t.Errorf("expected fallback timeout 10s, got %v", settings.RESTTimeout)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearConfigEnv(t)

	content := `
advisory:
  url: "https://advisor.example.com/api/ai-suggestions"
  apiKey: "sk-yaml"
notify:
  url: "https://host.example.com/notify"
trading:
  defaultPair: "SOL/USD"
system:
  dataPath: "/var/lib/leveragecalc"
  listenPort: 8181
  restTimeout: "7s"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.AdvisoryURL != "https://advisor.example.com/api/ai-suggestions" {
		t.Errorf("unexpected advisory URL %s", settings.AdvisoryURL)
	}
	if settings.AdvisoryAPIKey != "sk-yaml" {
		t.Errorf("unexpected API key %s", settings.AdvisoryAPIKey)
	}
	if settings.DefaultPair != "SOL/USD" {
		t.Errorf("unexpected pair %s", settings.DefaultPair)
	}
	if settings.DataPath != "/var/lib/leveragecalc" {
		t.Errorf("unexpected data path %s", settings.DataPath)
	}
	if settings.ListenPort != 8181 {
		t.Errorf("unexpected port %d", settings.ListenPort)
	}
	if settings.RESTTimeout != 7*time.Second {
		t.Errorf("unexpected timeout %v", settings.RESTTimeout)
	}
}

func TestLoadFromYAML_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	content := `
advisory:
  url: "https://yaml.example.com"
system:
  restTimeout: "7s"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ADVISORY_URL", "https://env.example.com")
	t.Setenv("LISTEN_PORT", "9999")

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.AdvisoryURL != "https://env.example.com" {
		t.Errorf("env must override yaml, got %s", settings.AdvisoryURL)
	}
	if settings.ListenPort != 9999 {
		t.Errorf("env must override yaml default, got %d", settings.ListenPort)
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromYAML_MalformedFile(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("advisory: [unclosed"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "ADVISORY_URL", "ADVISORY_API_KEY", "NOTIFY_URL",
		"DEFAULT_PAIR", "DATA_PATH", "LISTEN_PORT", "REST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}
