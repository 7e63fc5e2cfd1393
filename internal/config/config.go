package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (issued by the auth collaborator, verified here)
	JWTSecret string

	// Referral attribution token (signed cookie carrying an invite code)
	ReferralTokenSecret string
	ReferralTokenTTL    time.Duration

	// Public URLs
	AppBaseURL      string
	InviteSignupURL string
	InviteHomeURL   string

	// Gamification tuning
	StampXP int

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Redis (optional; shared rate-limit counters across instances)
	RedisAddr     string
	RedisPassword string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "tastetrail_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		ReferralTokenSecret: getEnv("REFERRAL_TOKEN_SECRET", ""),
		ReferralTokenTTL:    parseDuration(getEnv("REFERRAL_TOKEN_TTL", "336h"), 336*time.Hour),

		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:3000"),
		InviteSignupURL: getEnv("INVITE_SIGNUP_URL", "/signup"),
		InviteHomeURL:   getEnv("INVITE_HOME_URL", "/"),

		StampXP: parseInt(getEnv("STAMP_XP", "10"), 10),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}

	// The attribution token has its own secret so rotating it does not
	// invalidate auth sessions; fall back to the JWT secret when unset.
	if cfg.ReferralTokenSecret == "" {
		cfg.ReferralTokenSecret = cfg.JWTSecret
	}

	return cfg
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	if s == "" {
		return fallback
	}
	return n
}
