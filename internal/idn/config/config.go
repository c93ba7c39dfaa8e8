package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/parsers"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	// DisableCache turns off verdict memoization.
	DisableCache bool `koanf:"disable_cache"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Direction selects the conversion applied to each input domain.
	Direction string `koanf:"direction" validate:"required,oneof=ascii unicode display normalize"`

	// Mode is the StringPrep mode for the ascii and unicode directions.
	Mode string `koanf:"mode" validate:"required,oneof=dns ui ignore"`

	// Profile, ShowPunycode and the extra character lists seed the IDN
	// preferences. A preference file overrides them key by key.
	Profile           string   `koanf:"profile" validate:"required,oneof=ascii ASCII high moderate"`
	ShowPunycode      bool     `koanf:"show_punycode"`
	ExtraAllowedChars []string `koanf:"extra_allowed_chars" validate:"omitempty,dive,codepoints"`
	ExtraBlockedChars []string `koanf:"extra_blocked_chars" validate:"omitempty,dive,codepoints"`

	// PrefsFile is an optional YAML, JSON or TOML preference file.
	PrefsFile string `koanf:"prefs_file"`

	// BlocklistFile replaces the built-in blocklist. Plain lists and
	// YAML, JSON or TOML files are accepted.
	BlocklistFile string `koanf:"blocklist_file"`

	// BlocklistDB is a bbolt file holding the last blocklist that loaded.
	BlocklistDB string `koanf:"blocklist_db"`

	// Watch keeps the process running and applies preference and
	// blocklist file changes as they happen.
	Watch bool `koanf:"watch"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings for rr-idn.
var DEFAULT_APP_CONFIG = AppConfig{
	CacheSize:    4096,
	DisableCache: false,
	Env:          "prod",
	LogLevel:     "info",
	Direction:    "display",
	Mode:         "ui",
	Profile:      "high",
}

// validCodepoints reports whether the field parses as an extra character
// list: literal characters or U+XXXX codepoints and ranges.
func validCodepoints(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := parsers.ParseCharList(s)
	return err == nil
}

// envLoader is a function that loads environment variables with the prefix "IDN_".
// It transforms the keys to lowercase and removes the prefix,
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "IDN_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "IDN_"))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf instance
// using the structs provider and the DEFAULT_APP_CONFIG struct.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "codepoints" tag with the provided validator.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("codepoints", validCodepoints)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

// VerdictCacheSize returns the cache size to hand the IDN service, where a
// negative size disables the cache.
func (c *AppConfig) VerdictCacheSize() int {
	if c.DisableCache {
		return -1
	}
	return c.CacheSize
}
