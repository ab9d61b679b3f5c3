package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	Clinic   ClinicConfig `mapstructure:"clinic"`
	Chat     ChatConfig   `mapstructure:"chat"`
	JWT      JWTConfig    `mapstructure:"jwt"`
	Mongo    MongoConfig  `mapstructure:"mongo"`
	Redis    RedisConfig  `mapstructure:"redis"`
	Events   EventsConfig `mapstructure:"events"`
	Log      LogConfig    `mapstructure:"log"`
	SeedFile string       `mapstructure:"seed_file"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ClinicConfig struct {
	MaxSecretaries int    `mapstructure:"max_secretaries"`
	StaffCode      string `mapstructure:"staff_code"`
	AdminCode      string `mapstructure:"admin_code"`
	DemoLogins     bool   `mapstructure:"demo_logins"`
}

type ChatConfig struct {
	ServiceURL string        `mapstructure:"service_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Channel string `mapstructure:"channel"`
}

type EventsConfig struct {
	Buffer    int           `mapstructure:"buffer"`
	Heartbeat time.Duration `mapstructure:"heartbeat"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("clinic.max_secretaries", 4)
	v.SetDefault("clinic.staff_code", "TEAM2026")
	v.SetDefault("clinic.admin_code", "MYCLINIC123")
	v.SetDefault("clinic.demo_logins", false)

	v.SetDefault("chat.service_url", "")
	v.SetDefault("chat.timeout", 5*time.Second)

	v.SetDefault("jwt.secret", "dentaflow-dev-secret")
	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "dentaflow")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.channel", "dentaflow:events")

	v.SetDefault("events.buffer", 16)
	v.SetDefault("events.heartbeat", 25*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("seed_file", "")
}

// Environment names that do not follow the SECTION_KEY convention.
var envAliases = map[string][]string{
	"server.port":            {"SERVER_PORT", "PORT", "API_PORT"},
	"server.mode":            {"SERVER_MODE", "GIN_MODE"},
	"clinic.max_secretaries": {"CLINIC_MAX_SECRETARIES", "MAX_SECRETARIES"},
	"clinic.staff_code":      {"CLINIC_STAFF_CODE", "STAFF_CODE"},
	"clinic.admin_code":      {"CLINIC_ADMIN_CODE", "ADMIN_CODE"},
	"clinic.demo_logins":     {"CLINIC_DEMO_LOGINS", "DEMO_LOGINS"},
	"chat.service_url":       {"CHAT_SERVICE_URL", "PYTHON_URL"},
	"seed_file":              {"SEED_FILE"},
}

// Load reads an optional .env file, an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on environment variables.")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Clinic.MaxSecretaries < 0 {
		return fmt.Errorf("clinic.max_secretaries must not be negative, got %d", c.Clinic.MaxSecretaries)
	}
	if c.Events.Buffer <= 0 {
		return fmt.Errorf("events.buffer must be positive, got %d", c.Events.Buffer)
	}
	if c.Events.Heartbeat <= 0 {
		return fmt.Errorf("events.heartbeat must be positive, got %s", c.Events.Heartbeat)
	}
	if c.Chat.Timeout <= 0 {
		return fmt.Errorf("chat.timeout must be positive, got %s", c.Chat.Timeout)
	}
	return nil
}

// TokenTTL is the lifetime of issued access tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpiryHours) * time.Hour
}
