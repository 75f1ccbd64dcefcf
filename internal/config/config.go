package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode        string        `mapstructure:"mode"`
	Port        int           `mapstructure:"port"`
	ReadLimit   int64         `mapstructure:"read_limit"`
	PingPeriod  time.Duration `mapstructure:"ping_period"`
	Secret      string        `mapstructure:"secret"`
	AuthTimeout time.Duration `mapstructure:"auth_timeout"`
	PollWait    time.Duration `mapstructure:"poll_wait"`
	PollTTL     time.Duration `mapstructure:"poll_ttl"`
	PostgresDSN string        `mapstructure:"postgres_dsn"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("auth_timeout", "5s")
	v.SetDefault("poll_wait", "25s")
	v.SetDefault("poll_ttl", "90s")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	// Secrets come from the environment in deployments.
	if s := os.Getenv("AMITY_SECRET"); s != "" {
		v.Set("secret", s)
	}
	if dsn := os.Getenv("AMITY_POSTGRES_DSN"); dsn != "" {
		v.Set("postgres_dsn", dsn)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("secret is required")
	}
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres_dsn is required")
	}
	return &cfg, nil
}
