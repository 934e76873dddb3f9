package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL    string
	UseMemoryStore bool
	RedisAddr      string
	RedisPassword  string
	RabbitMQURL    string

	JWTSecret string
	JWTTTL    time.Duration
	OTPTTL    time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassword string

	EvolutionURL             string
	EvolutionAPIKey          string
	EvolutionOTPInstance     string
	EvolutionDefaultInstance string
	EvolutionWebhookSecret   string

	MailHost   string
	MailPort   int
	MailUser   string
	MailPass   string
	MailFrom   string
	AlertEmail string

	PublicBaseURL       string
	CORSOrigins         []string
	TrustedProxies      []string
	PublicRateLimit     int
	QuizCacheSize       int
	QuizCacheTTL        time.Duration
	RemarketingInterval time.Duration
	Timezone            string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		UseMemoryStore: getEnvAsBool("USE_MEMORY_STORE", false),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvAsDuration("JWT_TTL", 12*time.Hour),
		OTPTTL:    getEnvAsDuration("OTP_TTL", 5*time.Minute),

		AdminName:     getEnv("ADMIN_NAME", "Administrador"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		EvolutionURL:             getEnv("EVOLUTION_URL", "http://localhost:8081"),
		EvolutionAPIKey:          getEnv("EVOLUTION_API_KEY", ""),
		EvolutionOTPInstance:     getEnv("EVOLUTION_OTP_INSTANCE", "crm-otp"),
		EvolutionDefaultInstance: getEnv("EVOLUTION_DEFAULT_INSTANCE", "crm-default"),
		EvolutionWebhookSecret:   getEnv("EVOLUTION_WEBHOOK_SECRET", ""),

		MailHost:   getEnv("MAIL_HOST", ""),
		MailPort:   getEnvAsInt("MAIL_PORT", 587),
		MailUser:   getEnv("MAIL_USER", ""),
		MailPass:   getEnv("MAIL_PASS", ""),
		MailFrom:   getEnv("MAIL_FROM", "nao-responda@quizlead.com.br"),
		AlertEmail: getEnv("ALERT_EMAIL", ""),

		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", "http://localhost:5173"),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		TrustedProxies:      getEnvAsList("TRUSTED_PROXIES", nil),
		PublicRateLimit:     getEnvAsInt("PUBLIC_RATE_LIMIT", 30),
		QuizCacheSize:       getEnvAsInt("QUIZ_CACHE_SIZE", 256),
		QuizCacheTTL:        getEnvAsDuration("QUIZ_CACHE_TTL", 30*time.Second),
		RemarketingInterval: getEnvAsDuration("REMARKETING_INTERVAL", 15*time.Minute),
		Timezone:            getEnv("TIMEZONE", "America/Sao_Paulo"),
	}
}

// MailEnabled reports whether operator alerts can be sent.
func (c *Config) MailEnabled() bool {
	return c.MailHost != "" && c.AlertEmail != ""
}

// Location resolves Timezone, falling back to local time.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
