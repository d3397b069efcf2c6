package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileName is the optional TOML settings file read from the working directory
const FileName = "resection-analyzer.toml"

// EnvPrefix prefixes environment overrides (e.g. RESECTION_ANALYZER_PORT=9090)
const EnvPrefix = "RESECTION_ANALYZER_"

// Config holds process-wide settings
type Config struct {
	Data       string `koanf:"data"`        // Patient data JSON file
	Dilate     int    `koanf:"dilate"`      // Default dilation (+) / erosion (-) radius
	Port       int    `koanf:"port"`        // HTTP port for serve
	Verbosity  string `koanf:"verbosity"`   // debug, info, warn, error
	VerboseCnt int    `koanf:"verbose"`     // -v count
	JSONLogs   bool   `koanf:"json-logs"`   // Structured JSON log output
	Workers    int    `koanf:"workers"`     // Concurrent patients in batch mode
	ConfigFile string `koanf:"config-file"` // Settings file path
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"data":        "data/DATA.json",
		"dilate":      0,
		"port":        8080,
		"verbosity":   "",
		"verbose":     0,
		"json-logs":   false,
		"workers":     4,
		"config-file": FileName,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	settingsFile := FileName
	if f != nil {
		if fl := f.Lookup("config-file"); fl != nil && fl.Changed {
			settingsFile = fl.Value.String()
		}
	}
	// A missing settings file is not an error
	_ = k.Load(file.Provider(settingsFile), toml.Parser())

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// mapProvider feeds a static map into koanf
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
