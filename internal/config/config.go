package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is stripped from environment variables; a double underscore
// separates nested keys (LEARNLENS_LOG__LEVEL is log.level).
const EnvPrefix = "LEARNLENS_"

// Config holds every runtime setting.
type Config struct {
	// DB is the SQLite database path. Empty selects store.DefaultDBPath.
	DB string `koanf:"db"`

	Log    LogConfig    `koanf:"log"`
	Server ServerConfig `koanf:"server"`
	Engine EngineConfig `koanf:"engine"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	AllowedOrigins  []string      `koanf:"allowed_origins" validate:"dive,required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// EngineConfig tunes the progress engine and dashboard.
type EngineConfig struct {
	BaseXP        int `koanf:"base_xp" validate:"gte=0"`
	RecentEvents  int `koanf:"recent_events" validate:"gt=0"`
	RecentQuizzes int `koanf:"recent_quizzes" validate:"gt=0"`
	ReviewLimit   int `koanf:"review_limit" validate:"gt=0"`
}

// Defaults returns the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		"db":                      "",
		"log.level":               "info",
		"log.format":              "console",
		"server.addr":             ":8080",
		"server.allowed_origins":  []string{"*"},
		"server.shutdown_timeout": 10 * time.Second,
		"engine.base_xp":          10,
		"engine.recent_events":    50,
		"engine.recent_quizzes":   10,
		"engine.review_limit":     20,
	}
}

// Sources lists where Load reads settings from. Zero values are skipped.
type Sources struct {
	// File is a YAML config file. It must exist when set.
	File string
	// EnvFile is a dotenv file loaded into the process environment before
	// LEARNLENS_ variables are read. A missing file is ignored.
	EnvFile string
	// Flags are command-line flags; only flags the user set override.
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":         "db",
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "server.addr",
	"origins":    "server.allowed_origins",
}

// Load merges defaults, the YAML file, the environment and flags, in that
// order of precedence, and validates the result.
func Load(src Sources) (*Config, error) {
	k := koanf.New(".")

	for key, val := range Defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if src.File != "" {
		if err := k.Load(file.Provider(src.File), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", src.File, err)
		}
	}

	if src.EnvFile != "" {
		if err := godotenv.Load(src.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", src.EnvFile, err)
		}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if src.Flags != nil {
		p := posflag.ProviderWithFlag(src.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(src.Flags, f)
		})
		if err := k.Load(p, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// envKey turns LEARNLENS_SERVER__ALLOWED_ORIGINS into server.allowed_origins.
// List values are comma separated.
func envKey(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "server.allowed_origins" {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
