// File: internal/config/config.go
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

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port       int    `yaml:"port"`
	PublicURL  string `yaml:"public_url"`  // base for provider callback URLs
	ReturnURL  string `yaml:"return_url"`  // where providers send the user after paying
	JWTSecret  string `yaml:"jwt_secret"`  // HS256 secret for checkout auth
	AdminToken string `yaml:"admin_token"` // static bearer for /metrics; empty leaves it open
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RemnawaveConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type BotSyncConfig struct {
	URL      string        `yaml:"url"`   // companion bot sync endpoint
	Token    string        `yaml:"token"` // telegram bot token for buyer messages
	Timeout  time.Duration `yaml:"timeout"`
	Disabled bool          `yaml:"disabled"`
}

// ProvidersConfig carries one credential block per payment provider. A
// provider with an empty block is simply not registered.
type ProvidersConfig struct {
	YooKassa struct {
		ShopID    string `yaml:"shop_id"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"yookassa"`
	Heleket struct {
		Merchant string `yaml:"merchant"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"heleket"`
	CrystalPay struct {
		Login  string `yaml:"login"`
		Secret string `yaml:"secret"`
		Salt   string `yaml:"salt"`
	} `yaml:"crystalpay"`
	Platega struct {
		MerchantID string `yaml:"merchant_id"`
		Secret     string `yaml:"secret"`
	} `yaml:"platega"`
	MulenPay struct {
		ShopID    string `yaml:"shop_id"`
		APIKey    string `yaml:"api_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"mulenpay"`
	Robokassa struct {
		Login     string `yaml:"login"`
		Password1 string `yaml:"password1"`
		Password2 string `yaml:"password2"`
	} `yaml:"robokassa"`
	FreeKassa struct {
		MerchantID string `yaml:"merchant_id"`
		Secret1    string `yaml:"secret1"`
		Secret2    string `yaml:"secret2"`
	} `yaml:"freekassa"`
	Monobank struct {
		Token string `yaml:"token"`
	} `yaml:"monobank"`
}

type SweepConfig struct {
	Interval   time.Duration `yaml:"interval"`    // how often to sweep pending orders
	PendingTTL time.Duration `yaml:"pending_ttl"` // age at which a pending order expires
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Remnawave RemnawaveConfig `yaml:"remnawave"`
	BotSync   BotSyncConfig   `yaml:"bot_sync"`
	Providers ProvidersConfig `yaml:"providers"`
	Sweep     SweepConfig     `yaml:"sweep"`

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
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Remnawave.Timeout <= 0 {
		cfg.Remnawave.Timeout = 30 * time.Second
	}
	if cfg.BotSync.Timeout <= 0 {
		cfg.BotSync.Timeout = 10 * time.Second
	}
	if cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = 10 * time.Minute
	}
	if cfg.Sweep.PendingTTL <= 0 {
		cfg.Sweep.PendingTTL = 24 * time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Remnawave.BaseURL == "" || cfg.Remnawave.Token == "" {
		return nil, errors.New("remnawave.base_url and remnawave.token are required")
	}
	if cfg.HTTP.PublicURL == "" {
		return nil, errors.New("http.public_url is required")
	}
	if cfg.HTTP.JWTSecret == "" {
		return nil, errors.New("http.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
