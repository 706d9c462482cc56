package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

// Duration wraps time.Duration so YAML values like "30s" or "5m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      Duration `yaml:"ttl"` // cache entry lifetime
}

type AIConfig struct {
	GeminiKey    string        `yaml:"gemini_key"`
	GeminiURL    string        `yaml:"gemini_url"`
	OpenAIKey    string        `yaml:"openai_key"`
	DefaultModel string        `yaml:"default_model"`
	Timeout      Duration `yaml:"timeout"` // per provider call
}

type QueueConfig struct {
	Retention   Duration `yaml:"retention"`    // how long terminal jobs stay visible
	LeaseTTL    Duration `yaml:"lease_ttl"`    // active lease lifetime
	MaxAttempts int           `yaml:"max_attempts"` // lease attempts before the job is failed
	SweepEvery  Duration `yaml:"sweep_every"`  // janitor interval
}

type WorkerConfig struct {
	Count        int           `yaml:"count"` // 0 disables the worker loop (API-only node)
	PollInterval Duration `yaml:"poll_interval"`
}

type ServerConfig struct {
	Port      int           `yaml:"port"`
	APIKey    string        `yaml:"api_key"`
	RateEvery Duration `yaml:"rate_every"` // min interval between submissions per user
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Queue    QueueConfig    `yaml:"queue"`
	Worker   WorkerConfig   `yaml:"worker"`
	Server   ServerConfig   `yaml:"server"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = Duration(time.Hour)
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gemini-2.0-flash"
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = Duration(60 * time.Second)
	}
	if cfg.Queue.Retention <= 0 {
		cfg.Queue.Retention = Duration(15 * time.Minute)
	}
	if cfg.Queue.LeaseTTL <= 0 {
		cfg.Queue.LeaseTTL = Duration(2 * time.Minute)
	}
	if cfg.Queue.MaxAttempts <= 0 {
		cfg.Queue.MaxAttempts = 3
	}
	if cfg.Queue.SweepEvery <= 0 {
		cfg.Queue.SweepEvery = Duration(time.Minute)
	}
	if cfg.Worker.Count < 0 {
		cfg.Worker.Count = 0
	}
	if cfg.Worker.PollInterval <= 0 {
		cfg.Worker.PollInterval = Duration(500 * time.Millisecond)
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateEvery <= 0 {
		cfg.Server.RateEvery = Duration(10 * time.Second)
	}
}
