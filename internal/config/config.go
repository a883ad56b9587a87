// Package config handles slotdiff configuration: a YAML file, defaults,
// SLOTDIFF_* environment overrides and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level slotdiff configuration.
type Config struct {
	Browser  BrowserConfig `yaml:"browser"`
	Page     PageConfig    `yaml:"page"`
	Store    StoreConfig   `yaml:"store"`
	Server   ServerConfig  `yaml:"server"`
	Bridge   BridgeConfig  `yaml:"bridge"`
	Locale   string        `yaml:"locale" validate:"oneof=en zh"`
	LogLevel string        `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string   `yaml:"remote" validate:"omitempty,url"`
	Stealth          string   `yaml:"stealth" validate:"oneof=headless headful"` // headless | headful
	XvfbDisplay      string   `yaml:"xvfb_display"`
	ResourceBlocking []string `yaml:"resource_blocking" validate:"dive,oneof=images fonts media stylesheets"`
	ViewportWidth    int      `yaml:"viewport_width" validate:"gte=320,lte=7680"`
	ViewportHeight   int      `yaml:"viewport_height" validate:"gte=200,lte=4320"`
}

// PageConfig is the schedule page the agent drives.
type PageConfig struct {
	URL             string        `yaml:"url" validate:"omitempty,url"`
	Settle          time.Duration `yaml:"settle" validate:"gte=0"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout" validate:"gt=0"`
}

// StoreConfig locates the snapshot database.
type StoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ServerConfig is the panel HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// BridgeConfig points the panel at a remote page agent. An empty endpoint
// means the agent runs in-process.
type BridgeConfig struct {
	Endpoint string        `yaml:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Load reads path (or starts from defaults when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = 1440
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = 900
	}
	if c.Page.NavigateTimeout <= 0 {
		c.Page.NavigateTimeout = 30 * time.Second
	}
	if c.Store.Path == "" {
		c.Store.Path = "slotdiff.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:7410"
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// envPrefix scopes every override variable.
const envPrefix = "SLOTDIFF_"

// ApplyEnv overrides fields from SLOTDIFF_* variables resolved by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"BROWSER_REMOTE":  &c.Browser.Remote,
		"BROWSER_STEALTH": &c.Browser.Stealth,
		"XVFB_DISPLAY":    &c.Browser.XvfbDisplay,
		"PAGE_URL":        &c.Page.URL,
		"STORE_PATH":      &c.Store.Path,
		"SERVER_ADDR":     &c.Server.Addr,
		"BRIDGE_ENDPOINT": &c.Bridge.Endpoint,
		"LOCALE":          &c.Locale,
		"LOG_LEVEL":       &c.LogLevel,
	}
	for name, dst := range str {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"PAGE_SETTLE":    &c.Page.Settle,
		"BRIDGE_TIMEOUT": &c.Bridge.Timeout,
	}
	for name, dst := range durations {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup(envPrefix + "RESOURCE_BLOCKING"); ok {
		c.Browser.ResourceBlocking = splitList(v)
	}
	if v, ok := lookup(envPrefix + "VIEWPORT"); ok {
		w, h, found := strings.Cut(strings.ToLower(v), "x")
		wi, errW := strconv.Atoi(strings.TrimSpace(w))
		hi, errH := strconv.Atoi(strings.TrimSpace(h))
		if !found || errW != nil || errH != nil {
			return fmt.Errorf("config: %sVIEWPORT: want WIDTHxHEIGHT, got %q", envPrefix, v)
		}
		c.Browser.ViewportWidth, c.Browser.ViewportHeight = wi, hi
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: validate: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
}
