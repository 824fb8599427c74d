package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the recognized environment variables.
const envPrefix = "YAMLMEDIC_"

// envMappings routes environment variables to config paths. Explicit
// mappings keep multi-word keys like MAX_SIZE_MB from being mis-split on
// underscores.
var envMappings = map[string]string{
	envPrefix + "MAX_SIZE_MB": "max_size_mb",
	envPrefix + "TIMEOUT_S":   "timeout_s",
	envPrefix + "WORKERS":     "workers",
	envPrefix + "LOG_LEVEL":   "log.level",
	envPrefix + "LOG_JSON":    "log.json",
	envPrefix + "LOG_SOURCE":  "log.source",
}

// Loader builds validated Config values from defaults and environment.
type Loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	return &Loader{
		koanf:     koanf.New("."),
		validator: validator.New(),
	}
}

// Load applies defaults then environment overrides, unmarshals and
// validates the result.
func (l *Loader) Load() (*Config, error) {
	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default configuration: %w", err)
	}
	if err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if path, ok := envMappings[key]; ok {
				return path, value
			}
			return "", nil
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := l.koanf.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := l.validator.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}
