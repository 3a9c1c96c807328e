package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv      = "CHANGAL24_CONFIG"
	databasePathEnv    = "DATABASE_PATH"
	sourceChannelEnv   = "SOURCE_TELEGRAM_S"
	brandEnv           = "BRAND"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramTargetEnv  = "TELEGRAM_TARGET"
	generationKeyEnv   = "OPENAI_API_KEY"
	generationModelEnv = "OPENAI_MODEL"
	serverAddrEnv      = "SERVER_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Source     SourceConfig     `yaml:"source"`
	Delivery   DeliveryConfig   `yaml:"delivery"`
	Generation GenerationConfig `yaml:"generation"`
	Server     ServerConfig     `yaml:"server"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the intake and publish jobs run.
type SchedulerConfig struct {
	IntakeCron  string         `yaml:"intakeCron"`
	PublishCron string         `yaml:"publishCron"`
	Timezone    string         `yaml:"timezone"`
	location    *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SourceConfig describes the upstream feed channel.
type SourceConfig struct {
	ChannelURL string `yaml:"channelUrl"`
}

// DeliveryConfig wires the outbound Telegram channel.
type DeliveryConfig struct {
	Brand    string `yaml:"brand"`
	BotToken string `yaml:"botToken"`
	Target   string `yaml:"target"`
}

// GenerationConfig defines how to contact the text-generation service.
type GenerationConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// ServerConfig holds the read-only API listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// ValidateIntake reports the fatal misconfigurations for the intake job.
func (c Config) ValidateIntake() error {
	if c.Source.ChannelURL == "" {
		return fmt.Errorf("%s missing", sourceChannelEnv)
	}
	return nil
}

// ValidatePublish reports the fatal misconfigurations for the publish job.
func (c Config) ValidatePublish() error {
	if c.Delivery.Target == "" {
		return fmt.Errorf("%s missing", telegramTargetEnv)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(sourceChannelEnv); v != "" {
		c.Source.ChannelURL = v
	}

	if v := os.Getenv(brandEnv); v != "" {
		c.Delivery.Brand = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Delivery.BotToken = v
	}

	if v := os.Getenv(telegramTargetEnv); v != "" {
		c.Delivery.Target = v
	}

	if v := os.Getenv(generationKeyEnv); v != "" {
		c.Generation.APIKey = v
	}

	if v := os.Getenv(generationModelEnv); v != "" {
		c.Generation.Model = v
	}

	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}

	if override.Scheduler.IntakeCron != "" {
		base.Scheduler.IntakeCron = override.Scheduler.IntakeCron
	}
	if override.Scheduler.PublishCron != "" {
		base.Scheduler.PublishCron = override.Scheduler.PublishCron
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Source.ChannelURL != "" {
		base.Source.ChannelURL = override.Source.ChannelURL
	}

	if override.Delivery.Brand != "" {
		base.Delivery.Brand = override.Delivery.Brand
	}
	if override.Delivery.BotToken != "" {
		base.Delivery.BotToken = override.Delivery.BotToken
	}
	if override.Delivery.Target != "" {
		base.Delivery.Target = override.Delivery.Target
	}

	if override.Generation.Endpoint != "" {
		base.Generation.Endpoint = override.Generation.Endpoint
	}
	if override.Generation.Model != "" {
		base.Generation.Model = override.Generation.Model
	}
	if override.Generation.APIKey != "" {
		base.Generation.APIKey = override.Generation.APIKey
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "data.db"},
		Scheduler: SchedulerConfig{
			IntakeCron:  "*/30 * * * *",
			PublishCron: "0 * * * *",
			Timezone:    defaultTimezone,
			location:    tz,
		},
		Source: SourceConfig{ChannelURL: ""},
		Delivery: DeliveryConfig{
			Brand: "Changal 24",
		},
		Generation: GenerationConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Server: ServerConfig{Addr: ":8787"},
	}
}
