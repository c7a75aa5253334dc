package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBackupModel   string
	OpenAIBaseURL       string
	PexelsAPIKey        string
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURI   string
	ShopifyClientID     string
	ShopifyClientSecret string
	ShopifyRedirectURI  string
	ShopifyAPIVersion   string
	PostgresURI         string
	RedisURI            string
	FrontendURL         string
	R2                  R2
	SecretKey           string
	CookieName          string
	PromoteIntervalMin  int
	BulkDelaySeconds    int
}

func LoadConfig() *Config {
	return &Config{
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBackupModel:   getEnv("OPENAI_BACKUP_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		PexelsAPIKey:        getEnv("PEXELS_API_KEY", ""),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:   getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/callback"),
		ShopifyClientID:     getEnv("SHOPIFY_CLIENT_ID", ""),
		ShopifyClientSecret: getEnv("SHOPIFY_CLIENT_SECRET", ""),
		ShopifyRedirectURI:  getEnv("SHOPIFY_REDIRECT_URI", ""),
		ShopifyAPIVersion:   getEnv("SHOPIFY_API_VERSION", "2024-01"),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:          getEnv("SECRET_KEY", ""),
		CookieName:         getEnv("COOKIE_NAME", "blogpilot_session"),
		PromoteIntervalMin: getEnvInt("PROMOTE_INTERVAL_MINUTES", 2),
		BulkDelaySeconds:   getEnvInt("BULK_DELAY_SECONDS", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
