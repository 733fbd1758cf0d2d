// Package config loads and normalises circuit console configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/ui/forms"
	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

const (
	defaultAddr      = "127.0.0.1"
	defaultPort      = ":4173"
	defaultAssetsDir = "web"
	defaultName      = "Circuit Console"
	defaultLogLevel  = "info"

	DefaultShots = 1024
	MinShots     = 1
	MaxShots     = 10000
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `json:"addr"`
	Port string `json:"port"`
}

// Listen joins Addr and Port into a listen address.
func (s ServerConfig) Listen() string {
	port := s.Port
	if port != "" && !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return s.Addr + port
}

// AppConfig configures assets, log output and the page title.
type AppConfig struct {
	Assets  string `json:"assets"`
	Logs    string `json:"logs"`
	Catalog string `json:"catalog"`
	Name    string `json:"name"`
}

// LoggingConfig tunes the structured logger.
type LoggingConfig struct {
	Level     string `json:"level"`
	MaxSizeMB int    `json:"max_size_mb"`
	MaxFiles  int    `json:"max_files"`
}

// FormConfig is rendered into the page as data attributes for the WASM client.
type FormConfig struct {
	MinTokenLength int              `json:"min_token_length"`
	MeasureMatch   string           `json:"measure_match"`
	ResultMode     model.ResultMode `json:"result_mode"`
	DefaultShots   int              `json:"default_shots"`
	MinShots       int              `json:"min_shots"`
	MaxShots       int              `json:"max_shots"`
}

// ProviderConfig drives the stub provider behind the backend endpoints.
type ProviderConfig struct {
	Targets []model.Target `json:"targets"`
	// RejectTokens are answered with 401 by both endpoints.
	RejectTokens []string `json:"reject_tokens"`
}

// Config represents the runtime settings parsed from config.json.
type Config struct {
	Server   ServerConfig   `json:"server"`
	App      AppConfig      `json:"app"`
	Logging  LoggingConfig  `json:"logging"`
	Form     FormConfig     `json:"form"`
	Provider ProviderConfig `json:"provider"`
}

// Load reads the JSON config at the given path and applies defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return normalise(cfg)
}

// LoadOrDefault loads path when it exists and falls back to DefaultConfig otherwise.
func LoadOrDefault(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	cfg, _ := normalise(Config{})
	return cfg
}

func normalise(cfg Config) (Config, error) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = envValue("CIRCUIT_CONSOLE_ADDR", defaultAddr)
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = envValue("CIRCUIT_CONSOLE_PORT", defaultPort)
	}
	if cfg.App.Assets == "" {
		cfg.App.Assets = defaultAssetsDir
	}
	if cfg.App.Name == "" {
		cfg.App.Name = defaultName
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}

	form := &cfg.Form
	if form.MinTokenLength <= 0 {
		form.MinTokenLength = forms.DefaultMinTokenLength
	}
	form.MeasureMatch = string(forms.ParseMeasureMatch(form.MeasureMatch))
	form.ResultMode = model.ParseResultMode(string(form.ResultMode))
	if form.MinShots <= 0 {
		form.MinShots = MinShots
	}
	if form.MaxShots <= 0 {
		form.MaxShots = MaxShots
	}
	if form.MinShots > form.MaxShots {
		return Config{}, fmt.Errorf("form: min_shots %d exceeds max_shots %d", form.MinShots, form.MaxShots)
	}
	if form.DefaultShots <= 0 {
		form.DefaultShots = DefaultShots
	}
	if form.DefaultShots < form.MinShots || form.DefaultShots > form.MaxShots {
		return Config{}, fmt.Errorf("form: default_shots %d outside [%d, %d]", form.DefaultShots, form.MinShots, form.MaxShots)
	}

	if len(cfg.Provider.Targets) == 0 {
		cfg.Provider.Targets = defaultTargets()
	}
	for i, t := range cfg.Provider.Targets {
		if strings.TrimSpace(t.ID) == "" {
			return Config{}, fmt.Errorf("provider: target %d has no id", i)
		}
		if strings.TrimSpace(t.Label) == "" {
			cfg.Provider.Targets[i].Label = t.ID
		}
	}
	return cfg, nil
}

func defaultTargets() []model.Target {
	return []model.Target{
		{ID: "ibm_brisbane", Label: "IBM Brisbane", Qubits: model.IntPtr(127), QueueDepth: model.IntPtr(12)},
		{ID: "ibm_kyiv", Label: "IBM Kyiv", Qubits: model.IntPtr(127), QueueDepth: model.IntPtr(4)},
		{ID: "ibm_sherbrooke", Label: "IBM Sherbrooke", Qubits: model.IntPtr(127)},
	}
}

func envValue(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
