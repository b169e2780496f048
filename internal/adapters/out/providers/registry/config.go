package registry

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"catering/internal/adapters/out/providers/kfc"
	"catering/internal/adapters/out/providers/silpo"
	"catering/internal/adapters/out/providers/uklon"
	"catering/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

// Kind says which port a provider implements.
type Kind string

const (
	KindRestaurant Kind = "restaurant"
	KindDelivery   Kind = "delivery"
)

// ProviderConfig configures one provider integration.
type ProviderConfig struct {
	Name    string        `yaml:"name"`
	Kind    Kind          `yaml:"kind"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the providers file.
//
// Example:
//
//	providers:
//	  - name: kfc
//	    kind: restaurant
//	    base_url: http://kfc-mock:8001/api/orders
//	    timeout: 5s
//	  - name: uklon
//	    kind: delivery
//	    base_url: http://uklon-mock:8003/drivers/orders
type Config struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// DefaultConfig registers every known provider at its default base URL.
func DefaultConfig() Config {
	return Config{Providers: []ProviderConfig{
		{Name: kfc.Name, Kind: KindRestaurant, BaseURL: kfc.DefaultBaseURL},
		{Name: silpo.Name, Kind: KindRestaurant, BaseURL: silpo.DefaultBaseURL},
		{Name: uklon.Name, Kind: KindDelivery, BaseURL: uklon.DefaultBaseURL},
	}}
}

// LoadConfig reads the providers file at path. An empty path yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read providers file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a providers document. Unknown fields are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errs.NewValueIsInvalidErrorWithCause("providers file", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks names are unique and kinds are known.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		name := strings.ToLower(p.Name)
		if name == "" {
			return errs.NewValueIsRequiredError("provider name")
		}
		if _, dup := seen[name]; dup {
			return errs.NewValueIsInvalidErrorWithCause("providers", fmt.Errorf("duplicate provider %q", p.Name))
		}
		seen[name] = struct{}{}

		if p.Kind != KindRestaurant && p.Kind != KindDelivery {
			return errs.NewValueIsInvalidErrorWithCause("provider kind", fmt.Errorf("%s: %q", p.Name, p.Kind))
		}
		if p.Timeout < 0 {
			return errs.NewValueIsInvalidErrorWithCause("provider timeout", fmt.Errorf("%s: %s", p.Name, p.Timeout))
		}
	}
	return nil
}

// WithEnvOverrides replaces base URLs with <NAME>_BASE_URL values found by lookup,
// e.g. KFC_BASE_URL.
func (c Config) WithEnvOverrides(lookup func(string) (string, bool)) Config {
	out := Config{Providers: make([]ProviderConfig, len(c.Providers))}
	copy(out.Providers, c.Providers)
	for i, p := range out.Providers {
		if v, ok := lookup(strings.ToUpper(p.Name) + "_BASE_URL"); ok && v != "" {
			out.Providers[i].BaseURL = v
		}
	}
	return out
}
