// Package config loads the application configuration. The embedded defaults
// suit local development; an override file and the environment adjust them
// for deployment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/web/db"
)

//go:embed config_default.yaml
var defaultYAML []byte

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AWESOME_"

// Config is the full application configuration.
type Config struct {
	Server  Server    `yaml:"server"`
	DB      db.Config `yaml:"db"`
	Session Session   `yaml:"session"`
}

// Server configures the HTTP listener and its middleware.
type Server struct {
	Addr      string        `yaml:"addr"`
	StaticDir string        `yaml:"static_dir"`
	Timeout   time.Duration `yaml:"timeout"`
	BodyLimit int64         `yaml:"body_limit"`
	Rate      float64       `yaml:"rate"`
	Burst     int           `yaml:"burst"`
}

// Session holds the cookie signing secret.
type Session struct {
	Secret string `yaml:"secret"`
}

// Default returns the embedded configuration.
func Default() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse default config: %w", err)
	}
	return cfg, nil
}

// Load builds the configuration in layers: the embedded defaults, then the
// override file at path (skipped when path is empty), then variables from
// envFiles (".env" when none are given; missing files are skipped), then
// AWESOME_* environment variables. Keys of the override file that the
// defaults do not have are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	var defaults map[string]any
	if err := yaml.Unmarshal(defaultYAML, &defaults); err != nil {
		return Config{}, fmt.Errorf("parse default config: %w", err)
	}

	merged := defaults
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var override map[string]any
		if err := yaml.Unmarshal(data, &override); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		merged = merge(defaults, override)
	}

	// Round trip through YAML so the typed decoding rules apply to the result.
	data, err := yaml.Marshal(merged)
	if err != nil {
		return Config{}, fmt.Errorf("encode merged config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode merged config: %w", err)
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

// merge returns defaults with the values of override applied. Nested maps
// merge recursively; keys only in override are dropped.
func merge(defaults, override map[string]any) map[string]any {
	out := make(map[string]any, len(defaults))
	for k, v := range defaults {
		ov, ok := override[k]
		if !ok {
			out[k] = v
			continue
		}
		dm, dIsMap := v.(map[string]any)
		om, oIsMap := ov.(map[string]any)
		switch {
		case dIsMap && oIsMap:
			out[k] = merge(dm, om)
		case dIsMap:
			out[k] = v
		default:
			out[k] = ov
		}
	}
	return out
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat %s: %w", f, err)
		}
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil
	}
	// godotenv.Load never replaces variables that are already set.
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func applyEnv(cfg Config) (Config, error) {
	if addr := env("ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := env("STATIC_DIR"); dir != "" {
		cfg.Server.StaticDir = dir
	}
	if timeout := env("TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse %sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Server.Timeout = d
	}
	if secret := env("SESSION_SECRET"); secret != "" {
		cfg.Session.Secret = secret
	}

	dbEnv := db.Config{
		Driver:   env("DB_DRIVER"),
		DSN:      env("DB_DSN"),
		Host:     env("DB_HOST"),
		User:     env("DB_USER"),
		Password: os.Getenv(EnvPrefix + "DB_PASSWORD"),
		Database: env("DB_DATABASE"),
	}
	if port := env("DB_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("parse %sDB_PORT: %w", EnvPrefix, err)
		}
		dbEnv.Port = n
	}
	if size := env("DB_MAXSIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return Config{}, fmt.Errorf("parse %sDB_MAXSIZE: %w", EnvPrefix, err)
		}
		dbEnv.MaxSize = n
	}
	cfg.DB = cfg.DB.Merge(dbEnv)
	return cfg, nil
}
