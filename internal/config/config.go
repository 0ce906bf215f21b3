// Package config layers command-line flags over an optional YAML file.
// Precedence, lowest first: flag defaults, the config file, flags set on the
// command line.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Flag names shared by the commands and the config file keys.
const (
	KeyConfig        = "config"
	KeyAddr          = "addr"
	KeyForms         = "forms"
	KeyOpenAPI       = "openapi"
	KeyTheme         = "theme"
	KeyVariant       = "variant"
	KeyBackend       = "backend"
	KeySubmitTimeout = "submit-timeout"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
)

// Defaults.
const (
	DefaultAddr          = ":8080"
	DefaultSubmitTimeout = 10 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config is the resolved runtime configuration.
type Config struct {
	Addr string `koanf:"addr"`
	// Forms is a directory of YAML/JSON definitions merged over the embedded
	// ones.
	Forms string `koanf:"forms"`
	// OpenAPI lists documents (paths or URLs) whose x-authform operations
	// become forms.
	OpenAPI []string `koanf:"openapi"`
	Theme   string   `koanf:"theme"`
	Variant string   `koanf:"variant"`
	// Backend is the base URL submissions are posted to. Empty simulates the
	// backend.
	Backend       string        `koanf:"backend"`
	SubmitTimeout time.Duration `koanf:"submit-timeout"`
	LogLevel      string        `koanf:"log-level"`
	LogFormat     string        `koanf:"log-format"`
}

// RegisterFlags declares every configuration flag on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(KeyConfig, "", "YAML config file")
	flags.String(KeyForms, "", "directory of form definitions merged over the built-in screens")
	flags.StringSlice(KeyOpenAPI, nil, "OpenAPI document (path or URL) to import x-authform operations from")
	flags.String(KeyTheme, "", "theme name")
	flags.String(KeyVariant, "", "theme variant (for example dark)")
	flags.String(KeyBackend, "", "base URL of the authentication backend; empty simulates it")
	flags.Duration(KeySubmitTimeout, DefaultSubmitTimeout, "timeout for backend submissions")
	flags.String(KeyLogLevel, DefaultLogLevel, "log level: debug, info, warn or error")
	flags.String(KeyLogFormat, DefaultLogFormat, "log format: text or json")
}

// Load resolves the configuration from flags and the file named by the
// config flag, if any.
func Load(flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	path, _ := flags.GetString(KeyConfig)
	if path = strings.TrimSpace(path); path != "" {
		if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("config: load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that flags cannot constrain.
func (c Config) Validate() error {
	var errs []error
	if c.SubmitTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: %s must not be negative", KeySubmitTimeout))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown %s %q", KeyLogFormat, c.LogFormat))
	}
	if c.Backend != "" && !strings.HasPrefix(c.Backend, "http://") && !strings.HasPrefix(c.Backend, "https://") {
		errs = append(errs, fmt.Errorf("config: %s must be an http(s) URL", KeyBackend))
	}
	return errors.Join(errs...)
}
