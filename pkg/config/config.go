package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	GigaChat  GigaChatConfig
	Assistant AssistantConfig
	Insights  InsightsConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type AssistantConfig struct {
	Timeout         time.Duration
	ContextTokens   int
	RecentFacts     int
	FallbackEnabled bool
}

type InsightsConfig struct {
	OverspendRatio float64
	NearLimitRatio float64
	TrendThreshold float64
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine: plain environment variables work too
	// (useful for Docker/K8s).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"
	assistantTimeout, _ := strconv.Atoi(getEnv("ASSISTANT_TIMEOUT_SECONDS", "30"))
	contextTokens, _ := strconv.Atoi(getEnv("ASSISTANT_CONTEXT_TOKENS", "512"))
	recentFacts, _ := strconv.Atoi(getEnv("ASSISTANT_RECENT_FACTS", "5"))
	fallbackEnabled := getEnv("ASSISTANT_FALLBACK_ENABLED", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finsight"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: maxConns,
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Assistant: AssistantConfig{
			Timeout:         time.Duration(assistantTimeout) * time.Second,
			ContextTokens:   contextTokens,
			RecentFacts:     recentFacts,
			FallbackEnabled: fallbackEnabled,
		},
		Insights: InsightsConfig{
			OverspendRatio: getEnvFloat("INSIGHT_OVERSPEND_RATIO", 1.0),
			NearLimitRatio: getEnvFloat("INSIGHT_NEAR_LIMIT_RATIO", 0.85),
			TrendThreshold: getEnvFloat("INSIGHT_TREND_THRESHOLD", 0.20),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
