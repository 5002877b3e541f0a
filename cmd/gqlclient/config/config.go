// Package config holds the gqlclient CLI configuration: built-in defaults,
// an optional YAML file and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDebounce  = 5 * time.Millisecond
	DefaultCacheSize = 10
	DefaultTimeout   = 30 * time.Second
)

// Config is the resolved CLI configuration.
type Config struct {
	Endpoint  string            `yaml:"endpoint" validate:"required,url"`
	Debounce  time.Duration     `yaml:"debounce" validate:"min=0"`
	MaxBatch  int               `yaml:"max_batch" validate:"min=0"`
	CacheSize int               `yaml:"cache_size" validate:"min=1"`
	Timeout   time.Duration     `yaml:"timeout" validate:"min=0"`
	Headers   map[string]string `yaml:"headers" validate:"dive,keys,required,endkeys"`
	Direct    bool              `yaml:"direct"`
	Verbose   bool              `yaml:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Debounce:  DefaultDebounce,
		CacheSize: DefaultCacheSize,
		Timeout:   DefaultTimeout,
		Headers:   map[string]string{},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	return cfg, nil
}

var validate = validator.New()

// Validate reports the first invalid field in a readable form.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
}

// ParseHeader splits a "Name: value" or "Name=value" flag.
func ParseHeader(raw string) (string, string, error) {
	sep := strings.IndexAny(raw, ":=")
	if sep <= 0 {
		return "", "", fmt.Errorf("invalid header %q - expected Name: value", raw)
	}
	return strings.TrimSpace(raw[:sep]), strings.TrimSpace(raw[sep+1:]), nil
}
