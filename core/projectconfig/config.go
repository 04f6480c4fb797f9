package projectconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

const DefaultPath = ".crovia/config.yaml"

const (
	ModeWarn = "warn"
	ModeFail = "fail"
)

type Config struct {
	Mode    string          `yaml:"mode"`
	Output  OutputDefaults  `yaml:"output"`
	Badge   BadgeDefaults   `yaml:"badge"`
	Pointer PointerDefaults `yaml:"pointer"`
	Verify  VerifyDefaults  `yaml:"verify"`
}

type OutputDefaults struct {
	Dir string `yaml:"dir"`
}

type BadgeDefaults struct {
	Enabled *bool `yaml:"enabled"`
}

type PointerDefaults struct {
	Enabled       *bool  `yaml:"enabled"`
	PrivateKey    string `yaml:"private_key"` // #nosec G117 -- config key name documents expected secret input.
	PrivateKeyEnv string `yaml:"private_key_env"`
}

type VerifyDefaults struct {
	PublicKey    string `yaml:"public_key"`
	PublicKeyEnv string `yaml:"public_key_env"`
}

func Load(path string, allowMissing bool) (Config, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return Config{}, fmt.Errorf("project config path is required")
	}

	// #nosec G304 -- project config path is explicit local user input.
	content, err := os.ReadFile(trimmedPath)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read project config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse project config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	mode := strings.ToLower(strings.TrimSpace(c.Mode))
	if mode != "" && mode != ModeWarn && mode != ModeFail {
		return fmt.Errorf("mode must be %s or %s, got %q", ModeWarn, ModeFail, c.Mode)
	}
	return nil
}

// ResolvedMode returns the configured mode, defaulting to warn.
func (c Config) ResolvedMode() string {
	mode := strings.ToLower(strings.TrimSpace(c.Mode))
	if mode == "" {
		return ModeWarn
	}
	return mode
}

// ResolvedOutputDir returns the configured output directory, defaulting to
// .crovia.
func (c Config) ResolvedOutputDir() string {
	dir := strings.TrimSpace(c.Output.Dir)
	if dir == "" {
		return ".crovia"
	}
	return dir
}

// BadgeEnabled defaults to true when unset.
func (c Config) BadgeEnabled() bool {
	if c.Badge.Enabled == nil {
		return true
	}
	return *c.Badge.Enabled
}

// PointerEnabled defaults to true when unset.
func (c Config) PointerEnabled() bool {
	if c.Pointer.Enabled == nil {
		return true
	}
	return *c.Pointer.Enabled
}
