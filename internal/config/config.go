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
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "POINTLOG_"
	envConfigFile = "POINTLOG_CONFIG_FILE"
)

type Config struct {
	Port           string `koanf:"port" validate:"required,numeric"`
	LogLevel       string `koanf:"log_level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	PreviewRows    int    `koanf:"preview_rows" validate:"min=1,max=100"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes" validate:"min=1"`
	Workers        int    `koanf:"workers" validate:"min=1,max=64"`
	Encoding       string `koanf:"encoding" validate:"oneof=utf-8 euc-kr"`
	TraceExporter  string `koanf:"trace_exporter" validate:"oneof=none stdout"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"port":             "9446",
		"log_level":        "info",
		"preview_rows":     5,
		"max_upload_bytes": 10 << 20,
		"workers":          2,
		"encoding":         "utf-8",
		"trace_exporter":   "none",
	}
}

// ProcessEnvironmentVariables layers defaults, an optional YAML file named by
// POINTLOG_CONFIG_FILE and POINTLOG_* environment variables, then validates the result.
// A .env file in the working directory is loaded first when present.
func ProcessEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		if s == envConfigFile {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Encoding = strings.ToLower(cfg.Encoding)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}

	return &cfg, nil
}
