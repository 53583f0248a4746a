// Package config loads the settingsform host configuration from three
// layers, highest precedence last:
//
//  1. an optional .env file,
//  2. an optional YAML file,
//  3. environment variables prefixed SETTINGSFORM_, where "__" maps to "."
//     (SETTINGSFORM_HTTP__LISTEN_ADDR sets http.listen_addr).
//
// The merged tree is unmarshalled over Defaults and validated.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// EnvPrefix scopes environment overrides.
const EnvPrefix = "SETTINGSFORM_"

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ConfigPath string `koanf:"config_path" validate:"required,startswith=/"`
}

// Schema points at the settings schema.
type Schema struct {
	Source string `koanf:"source" validate:"required"`
}

// Store selects where the configuration document lives.
type Store struct {
	Driver string `koanf:"driver" validate:"oneof=file sqlite memory"`
	Path   string `koanf:"path" validate:"required_unless=Driver memory"`
}

// Appearance locates the persisted light/dark preference.
type Appearance struct {
	Path string `koanf:"path"`
}

// Actions points custom buttons at the device that serves their endpoints.
// Empty disables them.
type Actions struct {
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
}

// Log configures the zap logger.
type Log struct {
	File  string `koanf:"file"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Config is the whole host configuration.
type Config struct {
	HTTP       HTTP       `koanf:"http"`
	Schema     Schema     `koanf:"schema"`
	Store      Store      `koanf:"store"`
	Appearance Appearance `koanf:"appearance"`
	Actions    Actions    `koanf:"actions"`
	Log        Log        `koanf:"log"`
}

// Defaults returns the values used for keys no layer sets.
func Defaults() Config {
	return Config{
		HTTP:       HTTP{ListenAddr: ":8080", ConfigPath: "/config"},
		Schema:     Schema{Source: "schema.json"},
		Store:      Store{Driver: "file", Path: "config.json"},
		Appearance: Appearance{Path: ".settingsform/theme"},
		Log:        Log{Level: "info"},
	}
}

// Options point the loader at its files. Empty paths are skipped.
type Options struct {
	File    string
	EnvFile string
}

var validate = validator.New()

// Load merges the layers and validates the result. A missing .env file is
// not an error; a missing YAML file named explicitly is.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", opts.EnvFile, err)
		}
	}

	k := koanf.New(".")

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", opts.File, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: env overlay: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

// envKey maps SETTINGSFORM_STORE__PATH to store.path.
func envKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, EnvPrefix), "__", "."))
}
