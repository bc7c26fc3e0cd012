package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application settings. Values come from defaults, an
// optional config file, an optional .env file and PAYOFF_* environment
// variables, in increasing order of precedence.
type Config struct {
	Server struct {
		Port         int           `mapstructure:"port"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Payoff struct {
		DefaultTermYears int `mapstructure:"default_term_years"`
		MaxLoans         int `mapstructure:"max_loans"`
		MaxTermYears     int `mapstructure:"max_term_years"`
		PlanHistory      int `mapstructure:"plan_history"`
	} `mapstructure:"payoff"`
	Cache struct {
		Backend string        `mapstructure:"backend"` // memory | redis
		TTL     time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	RateLimit struct {
		Capacity int           `mapstructure:"capacity"`
		Refill   time.Duration `mapstructure:"refill"`
	} `mapstructure:"ratelimit"`
	Summary struct {
		APIKey  string        `mapstructure:"api_key"`
		APIURL  string        `mapstructure:"api_url"`
		Model   string        `mapstructure:"model"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"summary"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("payoff.default_term_years", 10)
	v.SetDefault("payoff.max_loans", 50)
	v.SetDefault("payoff.max_term_years", 50)
	v.SetDefault("payoff.plan_history", 100)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("ratelimit.capacity", 5)
	v.SetDefault("ratelimit.refill", time.Minute)
	v.SetDefault("summary.api_key", "")
	v.SetDefault("summary.api_url", "")
	v.SetDefault("summary.model", "gpt-4o-mini")
	v.SetDefault("summary.timeout", 10*time.Second)
}

// Load reads the configuration. configFile may be empty.
func Load(configFile string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PAYOFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Payoff.DefaultTermYears <= 0 {
		return fmt.Errorf("payoff.default_term_years must be > 0")
	}
	if c.Payoff.MaxLoans <= 0 || c.Payoff.MaxTermYears <= 0 {
		return fmt.Errorf("payoff limits must be > 0")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.RateLimit.Capacity <= 0 || c.RateLimit.Refill <= 0 {
		return fmt.Errorf("ratelimit capacity and refill must be > 0")
	}
	// The summary call runs inside the request, so it has to finish before
	// the server's write deadline.
	if c.Server.WriteTimeout > 0 && c.Summary.Timeout >= c.Server.WriteTimeout {
		return fmt.Errorf("summary.timeout (%s) must be shorter than server.write_timeout (%s)",
			c.Summary.Timeout, c.Server.WriteTimeout)
	}
	return nil
}

// KafkaEnabled reports whether events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
