package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	NATS          NATSConfig
	Auth          AuthConfig
	Notifications NotificationConfig
	Metrics       MetricsConfig
	RateLimit     RateLimitConfig
	QR            QRConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration
}

type StorageConfig struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
	Namespace   string
	SeedOnFirst bool
}

type NATSConfig struct {
	URL     string
	Subject string
}

type AuthConfig struct {
	ClerkSecretKey string
	DefaultActor   string
}

type NotificationConfig struct {
	Workers         int
	FCMCredentials  string
	FCMDeviceTokens []string
}

type MetricsConfig struct {
	User string
	Pass string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type QRConfig struct {
	Size int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3333"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Driver:      getEnv("STORAGE_DRIVER", "sqlite"),
			SQLitePath:  getEnv("SQLITE_PATH", "cardify.db"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			RedisURL:    getEnv("REDIS_URL", ""),
			Namespace:   getEnv("STORAGE_NAMESPACE", "cardify"),
			SeedOnFirst: getBool("SEED_ON_FIRST_RUN", true),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "cardify.storage.changed"),
		},
		Auth: AuthConfig{
			ClerkSecretKey: getEnv("CLERK_SECRET_KEY", ""),
			DefaultActor:   getEnv("DEFAULT_ACTOR", "Demo User"),
		},
		Notifications: NotificationConfig{
			Workers:         getInt("NOTIFY_WORKERS", 2),
			FCMCredentials:  getEnv("FCM_CREDENTIALS_FILE", ""),
			FCMDeviceTokens: getList("FCM_DEVICE_TOKENS"),
		},
		Metrics: MetricsConfig{
			User: getEnv("METRICS_USER", ""),
			Pass: getEnv("METRICS_PASS", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloat("RATE_LIMIT_RPS", 20),
			Burst: getInt("RATE_LIMIT_BURST", 40),
		},
		QR: QRConfig{
			Size: getInt("QR_SIZE", 256),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
