package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"leverage-calc/internal/common"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	AdvisoryURL    string
	AdvisoryAPIKey string
	NotifyURL      string
	DefaultPair    string
	DataPath       string
	ListenPort     int
	RESTTimeout    time.Duration
}

type ConfigFile struct {
	Advisory struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"apiKey"`
	} `yaml:"advisory"`

	Notify struct {
		URL string `yaml:"url"`
	} `yaml:"notify"`

	Trading struct {
		DefaultPair string `yaml:"defaultPair"`
	} `yaml:"trading"`

	System struct {
		DataPath    string `yaml:"dataPath"`
		ListenPort  int    `yaml:"listenPort"`
		RESTTimeout string `yaml:"restTimeout"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	restTimeout, err := time.ParseDuration(config.System.RESTTimeout)
	if err != nil {
		restTimeout = 10 * time.Second
	}

	settings := Settings{
		AdvisoryURL:    getEnvOrDefault(common.EnvAdvisoryURL, config.Advisory.URL),
		AdvisoryAPIKey: getEnvOrDefault(common.EnvAdvisoryAPIKey, config.Advisory.APIKey),
		NotifyURL:      getEnvOrDefault(common.EnvNotifyURL, config.Notify.URL),
		DefaultPair:    getEnvOrDefault(common.EnvDefaultPair, config.Trading.DefaultPair),
		DataPath:       getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		ListenPort:     getIntFromEnvOrConfig(common.EnvListenPort, config.System.ListenPort),
		RESTTimeout:    restTimeout,
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	advisoryURL, err := getEnvRequired(common.EnvAdvisoryURL)
	if err != nil {
		return Settings{}, err
	}

	settings := Settings{
		AdvisoryURL:    advisoryURL,
		AdvisoryAPIKey: os.Getenv(common.EnvAdvisoryAPIKey), // optional
		NotifyURL:      os.Getenv(common.EnvNotifyURL),      // optional
		DefaultPair:    getEnvOrDefault(common.EnvDefaultPair, common.DefaultPair),
		DataPath:       os.Getenv(common.EnvDataPath), // optional
		ListenPort:     getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		RESTTimeout:    getDurationOrDefault(common.EnvRESTTimeout, 10*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.DefaultPair == "" {
		s.DefaultPair = common.DefaultPair
	}
	if s.ListenPort == 0 {
		s.ListenPort = common.DefaultListenPort
	}
}

func getEnvRequired(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is missing", key)
	}
	return v, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.AdvisoryURL == "" {
		return fmt.Errorf("advisory URL cannot be empty")
	}

	if settings.DefaultPair == "" {
		return fmt.Errorf("default trading pair cannot be empty")
	}

	if settings.ListenPort < common.MinListenPort || settings.ListenPort > common.MaxListenPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d",
			common.MinListenPort, common.MaxListenPort, settings.ListenPort)
	}

	if settings.RESTTimeout < time.Second || settings.RESTTimeout > time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 1m, got %v", settings.RESTTimeout)
	}

	return nil
}
