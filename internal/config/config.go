// Package config loads tracker configuration from the environment, with an
// optional YAML whale roster merged in.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
)

type Config struct {
	Telegram    TelegramConfig
	Hyperliquid HyperliquidConfig
	Poller      PollerConfig
	Alert       AlertConfig
	DB          DBConfig
	Redis       RedisConfig
	Server      ServerConfig
	Log         LogConfig
	Tracing     TracingConfig

	Whales []model.Whale
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

type HyperliquidConfig struct {
	APIURL         string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	BreakerOpenTimeout      time.Duration
}

type PollerConfig struct {
	// Interval of 0 disables background polling and alerting entirely.
	Interval       time.Duration
	UnhealthyAfter int
	Retention      time.Duration
}

type AlertConfig struct {
	WebhookURL     string
	Cooldown       time.Duration
	MinNotionalUSD float64
	MinChangePct   float64
}

type DBConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL     string
	MidsTTL time.Duration
}

type ServerConfig struct {
	HealthPort int
}

type LogConfig struct {
	Level string
}

type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token: getEnv("TELEGRAM_TOKEN", ""),
		},
		Hyperliquid: HyperliquidConfig{
			APIURL:         getEnv("HYPERLIQUID_API_URL", "https://api.hyperliquid.xyz/info"),
			Timeout:        time.Duration(getEnvInt("HYPERLIQUID_TIMEOUT_SEC", 30)) * time.Second,
			RateLimitRPS:   getEnvFloat("HYPERLIQUID_RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvInt("HYPERLIQUID_RATE_LIMIT_BURST", 10),

			BreakerFailureThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
			BreakerSuccessThreshold: getEnvInt("BREAKER_SUCCESS_THRESHOLD", 2),
			BreakerOpenTimeout:      time.Duration(getEnvInt("BREAKER_OPEN_TIMEOUT_SEC", 30)) * time.Second,
		},
		Poller: PollerConfig{
			Interval:       time.Duration(getEnvInt("POLL_INTERVAL_SEC", 60)) * time.Second,
			UnhealthyAfter: getEnvInt("POLL_UNHEALTHY_AFTER", 3),
			Retention:      time.Duration(getEnvInt("SNAPSHOT_RETENTION_HOURS", 24*7)) * time.Hour,
		},
		Alert: AlertConfig{
			WebhookURL:     getEnv("ALERT_WEBHOOK_URL", ""),
			Cooldown:       time.Duration(getEnvInt("ALERT_COOLDOWN_SEC", 300)) * time.Second,
			MinNotionalUSD: getEnvFloat("ALERT_MIN_NOTIONAL_USD", 50_000),
			MinChangePct:   getEnvFloat("ALERT_MIN_CHANGE_PCT", 5),
		},
		DB: DBConfig{
			URL:             getEnv("DB_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			MidsTTL: time.Duration(getEnvInt("REDIS_MIDS_TTL_SEC", 15)) * time.Second,
		},
		Server: ServerConfig{
			HealthPort: getEnvInt("HEALTH_PORT", 8080),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("TRACING_ENDPOINT", ""),
			Insecure:    getEnvBool("TRACING_INSECURE", true),
			SampleRatio: getEnvFloat("TRACING_SAMPLE_RATIO", 1),
		},
	}

	chatID, err := parseChatID(getEnv("TELEGRAM_CHAT_ID", ""))
	if err != nil {
		return nil, err
	}
	cfg.Telegram.ChatID = chatID

	whales, err := loadWhales()
	if err != nil {
		return nil, err
	}
	cfg.Whales = whales

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseChatID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
	}
	return id, nil
}

// loadWhales merges the WHALE_N_ADDRESS/WHALE_N_NAME environment roster with
// the optional WHALES_FILE. Environment scanning stops at the first gap.
func loadWhales() ([]model.Whale, error) {
	var whales []model.Whale
	seen := make(map[string]bool)

	for i := 1; ; i++ {
		address := strings.TrimSpace(os.Getenv(fmt.Sprintf("WHALE_%d_ADDRESS", i)))
		if address == "" {
			break
		}
		name := strings.TrimSpace(os.Getenv(fmt.Sprintf("WHALE_%d_NAME", i)))
		if name == "" {
			name = fmt.Sprintf("Whale %d", i)
		}
		key := strings.ToLower(address)
		if seen[key] {
			continue
		}
		seen[key] = true
		whales = append(whales, model.Whale{Address: address, Name: name})
	}

	path := getEnv("WHALES_FILE", "")
	if path == "" {
		return whales, nil
	}

	fileWhales, err := loadWhalesFile(path)
	if err != nil {
		return nil, err
	}
	for _, w := range fileWhales {
		key := strings.ToLower(w.Address)
		if seen[key] {
			continue
		}
		seen[key] = true
		whales = append(whales, w)
	}
	return whales, nil
}

type whalesFile struct {
	Whales []whaleEntry `yaml:"whales"`
}

type whaleEntry struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
}

func loadWhalesFile(path string) ([]model.Whale, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whales file: %w", err)
	}

	var parsed whalesFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse whales file %s: %w", path, err)
	}

	var whales []model.Whale
	for i, entry := range parsed.Whales {
		address := strings.TrimSpace(entry.Address)
		if address == "" {
			return nil, fmt.Errorf("whales file %s: entry %d has no address", path, i+1)
		}
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = fmt.Sprintf("Whale %d", i+1)
		}
		whales = append(whales, model.Whale{Address: address, Name: name})
	}
	return whales, nil
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if len(c.Whales) == 0 {
		return fmt.Errorf("at least one whale is required (WHALE_1_ADDRESS or WHALES_FILE)")
	}
	if c.Hyperliquid.APIURL == "" {
		return fmt.Errorf("HYPERLIQUID_API_URL is required")
	}
	if c.Poller.Interval < 0 {
		return fmt.Errorf("POLL_INTERVAL_SEC must not be negative")
	}
	if c.Server.HealthPort <= 0 || c.Server.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be a valid port")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
