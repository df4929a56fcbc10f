// Package config loads fridge settings from .fridge.yaml, FRIDGE_* env vars,
// and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// DefaultRPC is the public Sui testnet fullnode.
	DefaultRPC = "https://fullnode.testnet.sui.io:443"
	// DefaultChain tags every submitted transaction.
	DefaultChain = "sui:testnet"
	// DefaultInterval is the polling cadence between reconciliations.
	DefaultInterval = 3 * time.Second
	// DefaultGasBudget is passed to the sui CLI, in MIST.
	DefaultGasBudget = 10_000_000

	// Module is the Move module holding the note type and entry functions.
	Module = "notes_app"
	// StructName is the Move struct the notes are stored as.
	StructName = "Note"
)

// EnvFiles are loaded, in order, before reading the environment. Existing
// variables are never overwritten.
var EnvFiles = []string{".env.local", ".env"}

// Config is the resolved configuration.
type Config struct {
	Package   string        `json:"package" yaml:"package" validate:"omitempty,hexadecimal"`
	Owner     string        `json:"owner,omitempty" yaml:"owner,omitempty" validate:"omitempty,hexadecimal"`
	RPC       string        `json:"rpc" yaml:"rpc" validate:"required,url"`
	Chain     string        `json:"chain" yaml:"chain" validate:"required"`
	Path      string        `json:"path" yaml:"path" validate:"required"`
	Interval  time.Duration `json:"interval" yaml:"interval" validate:"gt=0"`
	Sui       string        `json:"sui" yaml:"sui" validate:"required"`
	GasBudget uint64        `json:"gasBudget" yaml:"gasBudget" validate:"gt=0"`

	// Source is the config file viper read, if any.
	Source string `json:"source,omitempty" yaml:"source,omitempty" validate:"-"`
}

// ErrMissingPackage is reported by Warnings when no package id is set.
var ErrMissingPackage = errors.New("config: missing package id (set FRIDGE_PACKAGE_ID or package in .fridge.yaml)")

// Load resolves configuration. A missing package id is not an error; see
// Warnings.
func Load() (*Config, error) {
	for _, f := range EnvFiles {
		// Missing files are expected.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetDefault("rpc", DefaultRPC)
	v.SetDefault("chain", DefaultChain)
	v.SetDefault("path", "~/.fridge")
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("sui", "sui")
	v.SetDefault("gas-budget", DefaultGasBudget)
	v.SetConfigName(".fridge") // .yaml is implicit
	v.SetEnvPrefix("FRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("FRIDGE_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	pkg := v.GetString("package")
	if pkg == "" {
		// The web client kept its package id under this name.
		pkg = os.Getenv("VITE_PACKAGE_ID")
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}

	cfg := &Config{
		Package:   strings.TrimSpace(pkg),
		Owner:     strings.TrimSpace(v.GetString("owner")),
		RPC:       strings.TrimSpace(v.GetString("rpc")),
		Chain:     strings.TrimSpace(v.GetString("chain")),
		Path:      path,
		Interval:  v.GetDuration("interval"),
		Sui:       strings.TrimSpace(v.GetString("sui")),
		GasBudget: v.GetUint64("gas-budget"),
		Source:    v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field formats.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: invalid %s (%s)", strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// BasePath is where overlay colors are stored.
func (c *Config) BasePath() string {
	return c.Path
}

// TypeTag is the fully qualified note struct type, or "" when no package id
// is configured.
func (c *Config) TypeTag() string {
	if c == nil || c.Package == "" {
		return ""
	}
	return fmt.Sprintf("%s::%s::%s", c.Package, Module, StructName)
}

// Function returns the fully qualified Move entry function name.
func (c *Config) Function(name string) string {
	if c == nil || c.Package == "" {
		return ""
	}
	return fmt.Sprintf("%s::%s::%s", c.Package, Module, name)
}

// Warnings lists non-fatal configuration problems for display.
func (c *Config) Warnings() []error {
	var out []error
	if c == nil || c.Package == "" {
		out = append(out, ErrMissingPackage)
	}
	return out
}
