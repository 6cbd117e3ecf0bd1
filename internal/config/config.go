package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings, read once at startup
type Config struct {
	ServerPort        string
	GinMode           string
	DB                DBConfig
	JWT               JWTConfig
	Cookie            CookieConfig
	Logging           LoggingConfig
	Redis             RedisConfig
	AMQPURL           string
	InitialAdminEmail string

	// CORSAllowedOrigins are the only origins allowed credentialed cross-origin requests
	CORSAllowedOrigins []string
}

type JWTConfig struct {
	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type CookieConfig struct {
	Secure bool
	Domain string
}

type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	ProfileTTL time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dbCfg, err := LoadDBConfig()
	if err != nil {
		return nil, err
	}

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}

	accessMin := envInt("ACCESS_TOKEN_TTL_MIN", 30)
	refreshDays := envInt("REFRESH_TOKEN_TTL_DAYS", 7)
	if accessMin <= 0 || refreshDays <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive (ACCESS_TOKEN_TTL_MIN=%d, REFRESH_TOKEN_TTL_DAYS=%d)", accessMin, refreshDays)
	}

	return &Config{
		ServerPort: envStr("SERVER_PORT", "8080"),
		GinMode:    envStr("GIN_MODE", "debug"),
		DB:         *dbCfg,
		JWT: JWTConfig{
			SecretKey:  jwtSecret,
			AccessTTL:  time.Duration(accessMin) * time.Minute,
			RefreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
		},
		Cookie: CookieConfig{
			Secure: envBool("COOKIE_SECURE", false),
			Domain: os.Getenv("COOKIE_DOMAIN"),
		},
		Logging: LoggingConfig{
			Level:  envStr("LOG_LEVEL", "info"),
			Format: envStr("LOG_FORMAT", "json"),
			Output: envStr("LOG_OUTPUT", "stdout"),
		},
		Redis: RedisConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         envInt("REDIS_DB", 0),
			ProfileTTL: envDur("PROFILE_CACHE_TTL", 5*time.Minute),
		},
		AMQPURL:            os.Getenv("AMQP_URL"),
		InitialAdminEmail:  strings.ToLower(strings.TrimSpace(os.Getenv("INITIAL_ADMIN_EMAIL"))),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS"),
	}, nil
}

// envList splits a comma separated variable, dropping blanks
func envList(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
