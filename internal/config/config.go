package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config is the projboard configuration.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         int      `json:"port,omitempty" yaml:"port,omitempty"`
	Hostname     string   `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	EnableCORS   *bool    `json:"cors,omitempty" yaml:"cors,omitempty"`
	ReadTimeout  Duration `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Pretty *bool  `json:"pretty,omitempty" yaml:"pretty,omitempty"`
	File   *bool  `json:"file,omitempty" yaml:"file,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("30s") or as seconds.
type Duration time.Duration

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(val * float64(time.Second))
	case int:
		*d = Duration(time.Duration(val) * time.Second)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Hostname:    "127.0.0.1",
			EnableCORS:  boolPtr(true),
			ReadTimeout: Duration(30 * time.Second),
			// No write timeout for SSE
		},
		Log: LogConfig{
			Level:  "INFO",
			Pretty: boolPtr(false),
			File:   boolPtr(false),
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// CORSEnabled reports whether CORS is enabled.
func (c *Config) CORSEnabled() bool {
	return c.Server.EnableCORS == nil || *c.Server.EnableCORS
}

// PrettyLogs reports whether console logs are human-readable.
func (c *Config) PrettyLogs() bool {
	return c.Log.Pretty != nil && *c.Log.Pretty
}

// LogToFile reports whether logs are also written to a file.
func (c *Config) LogToFile() bool {
	return c.Log.File != nil && *c.Log.File
}

// Load loads configuration from multiple sources (priority order):
// 1. Defaults
// 2. Global config (~/.config/projboard/)
// 3. Project config in directory
// 4. PROJBOARD_CONFIG file
// 5. Environment variables
func Load(directory string) (*Config, error) {
	config := Default()

	// Track loaded files to avoid duplicates
	loaded := make(map[string]bool)
	var loadErr error

	loadOnce := func(path string) {
		absPath, err := filepath.Abs(path)
		if err != nil || loaded[absPath] {
			return
		}
		err = loadConfigFile(path, config)
		switch {
		case err == nil:
			loaded[absPath] = true
		case errors.Is(err, os.ErrNotExist):
		default:
			loadErr = errors.Join(loadErr, err)
		}
	}

	// 1. Global config
	globalPath := GetPaths().Config
	loadOnce(filepath.Join(globalPath, "projboard.json"))
	loadOnce(filepath.Join(globalPath, "projboard.jsonc"))

	// 2. Project config
	if directory != "" {
		for _, name := range []string{"projboard.json", "projboard.jsonc", "projboard.yaml", "projboard.yml"} {
			loadOnce(filepath.Join(directory, name))
		}
	}

	// 3. PROJBOARD_CONFIG file override
	if configPath := os.Getenv("PROJBOARD_CONFIG"); configPath != "" {
		err := loadConfigFile(configPath, config)
		if err != nil {
			loadErr = errors.Join(loadErr, err)
		}
	}

	if loadErr != nil {
		return nil, loadErr
	}

	// 4. Environment variables (highest priority)
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// loadConfigFile loads a single config file, choosing the format by extension.
func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fileConfig Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		// Strip JSONC comments using tidwall/jsonc
		data = interpolate(jsonc.ToJSON(data))
		if err := json.Unmarshal(data, &fileConfig); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	mergeConfig(config, &fileConfig)
	return nil
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate replaces {env:VAR_NAME} placeholders.
func interpolate(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})
}

// mergeConfig merges the fields set in source into target.
func mergeConfig(target, source *Config) {
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Hostname != "" {
		target.Server.Hostname = source.Server.Hostname
	}
	if source.Server.EnableCORS != nil {
		target.Server.EnableCORS = source.Server.EnableCORS
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}

	if source.Log.Level != "" {
		target.Log.Level = source.Log.Level
	}
	if source.Log.Pretty != nil {
		target.Log.Pretty = source.Log.Pretty
	}
	if source.Log.File != nil {
		target.Log.File = source.Log.File
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *Config) error {
	if port := os.Getenv("PROJBOARD_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 {
			return fmt.Errorf("invalid PROJBOARD_PORT %q", port)
		}
		config.Server.Port = n
	}

	if hostname := os.Getenv("PROJBOARD_HOSTNAME"); hostname != "" {
		config.Server.Hostname = hostname
	}

	for env, target := range map[string]**bool{
		"PROJBOARD_CORS":       &config.Server.EnableCORS,
		"PROJBOARD_LOG_PRETTY": &config.Log.Pretty,
		"PROJBOARD_LOG_FILE":   &config.Log.File,
	} {
		raw := os.Getenv(env)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q", env, raw)
		}
		*target = boolPtr(b)
	}

	if level := os.Getenv("PROJBOARD_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}

	return nil
}

// Save saves the configuration to a file as indented JSON.
func Save(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
