// Package config loads and validates application configuration from
// defaults and YAMLMEDIC_* environment variables.
package config

// Config holds the recognized pipeline and CLI options. The indentation
// unit (2 spaces) and repair attempt cap (3) are fixed engine constants and
// deliberately not configurable.
type Config struct {
	// MaxSizeMB rejects inputs above this ceiling before repair runs.
	MaxSizeMB int `koanf:"max_size_mb" validate:"gt=0"`
	// TimeoutS is advisory: enforced by callers between units of work,
	// never inside the bounded repair loop.
	TimeoutS int `koanf:"timeout_s" validate:"gte=0"`
	// Workers bounds batch parallelism.
	Workers int `koanf:"workers" validate:"gt=0,lte=64"`

	Log LogConfig `koanf:"log"`
}

// LogConfig mirrors the logging flags.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON   bool   `koanf:"json"`
	Source bool   `koanf:"source"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		MaxSizeMB: 10,
		TimeoutS:  30,
		Workers:   4,
		Log: LogConfig{
			Level: "info",
		},
	}
}
