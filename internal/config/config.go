// Package config loads the tablewatch configuration file.
//
// Files may be YAML, JSON or TOML, selected by extension. Keys absent from the file keep
// their defaults; unknown keys are rejected.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/tablewatch"
	"github.com/aretw0/tablewatch/pkg/adapters/file"
	"github.com/aretw0/tablewatch/pkg/adapters/redis"
	"github.com/aretw0/tablewatch/pkg/manifest"
	"github.com/aretw0/tablewatch/pkg/reload"
	"github.com/aretw0/tablewatch/pkg/sensor"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Cursor backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	Host                  string  `mapstructure:"host"`
	Port                  int     `mapstructure:"port"`
	LocationName          string  `mapstructure:"location_name"`
	PollIntervalSeconds   float64 `mapstructure:"poll_interval_seconds"`
	ManifestPath          string  `mapstructure:"manifest_path"`
	RequestTimeoutSeconds float64 `mapstructure:"request_timeout_seconds"`
	AdvancePolicy         string  `mapstructure:"advance_policy"`
	SensorName            string  `mapstructure:"sensor_name"`
	ExternalSource        string  `mapstructure:"external_source"`
	ListenAddr            string  `mapstructure:"listen_addr"`
	LogLevel              string  `mapstructure:"log_level"`
	LogFormat             string  `mapstructure:"log_format"`

	Cursor CursorConfig `mapstructure:"cursor"`
}

// CursorConfig selects where the sensor watermark lives.
type CursorConfig struct {
	Backend       string `mapstructure:"backend"`
	Dir           string `mapstructure:"dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	Prefix        string `mapstructure:"prefix"`
	Namespace     string `mapstructure:"namespace"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Host:                  "localhost",
		Port:                  3000,
		LocationName:          sensor.DefaultLocation,
		PollIntervalSeconds:   sensor.DefaultMinimumInterval.Seconds(),
		ManifestPath:          manifest.DefaultPath,
		RequestTimeoutSeconds: reload.DefaultTimeout.Seconds(),
		AdvancePolicy:         string(sensor.AdvanceOnSuccess),
		SensorName:            sensor.DefaultName,
		ExternalSource:        tablewatch.DefaultExternalSource,
		ListenAddr:            ":8080",
		LogLevel:              "info",
		LogFormat:             "text",
		Cursor: CursorConfig{
			Backend:   BackendFile,
			Dir:       file.DefaultDir,
			RedisAddr: "localhost:6379",
			Prefix:    redis.DefaultPrefix,
		},
	}
}

// Load reads path over the defaults and validates the result.
// An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	raw, err := decodeRaw(filepath.Ext(path), data)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	if err := apply(&cfg, raw); err != nil {
		return Config{}, fmt.Errorf("config decode failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func decodeRaw(ext string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return raw, nil
}

func apply(cfg *Config, raw map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if strings.TrimSpace(c.LocationName) == "" {
		return errors.New("location_name is required")
	}
	if c.PollIntervalSeconds <= 0 {
		return errors.New("poll_interval_seconds must be positive")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return errors.New("request_timeout_seconds must be positive")
	}
	if strings.TrimSpace(c.ManifestPath) == "" {
		return errors.New("manifest_path is required")
	}
	if _, err := sensor.ParsePolicy(c.AdvancePolicy); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q must be text or json", c.LogFormat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	switch c.Cursor.Backend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(c.Cursor.Dir) == "" {
			return errors.New("cursor.dir is required for the file backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Cursor.RedisAddr) == "" {
			return errors.New("cursor.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cursor.backend %q must be memory, file or redis", c.Cursor.Backend)
	}
	return nil
}

// PollInterval is the minimum spacing between sensor ticks.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds * float64(time.Second))
}

// RequestTimeout bounds each reload request.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds * float64(time.Second))
}

// Policy returns the parsed advance policy. Call Validate first.
func (c Config) Policy() sensor.AdvancePolicy {
	p, _ := sensor.ParsePolicy(c.AdvancePolicy)
	return p
}

// Level parses LogLevel as a slog level name such as "debug" or "warn".
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
