package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned by Validate when no signing secret is configured.
// The service refuses to start instead of signing with a well-known default.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	ServerAddr string

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBPath     string

	RedisAddr     string
	RedisPort     string
	RedisPassword string
	UsageStore    string

	JWTSecret string

	// Access brokering
	RateLimitMax    int
	RateLimitWindow time.Duration
	FreeDailyLimit  int
	PartnersFile    string
	CORSOrigins     []string

	// Model provider (OpenAI compatible chat completions)
	LLMBaseURL   string
	LLMAPIKey    string
	LLMTimeout   time.Duration
	LLMMaxTokens int

	// Per-modality unit costs used for the workflow price floor
	CostText     int64
	CostImage    int64
	CostAudio    int64
	CostVideo    int64
	CostDocument int64

	// Object storage
	OSSEndpoint        string
	OSSRegion          string
	OSSBucketName      string
	OSSAccessKeyID     string
	OSSAccessKeySecret string
	OSSRoleArn         string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

// LLMEnabled reports whether a live model provider is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMAPIKey != "" && c.LLMBaseURL != ""
}

// OSSEnabled reports whether media URLs can be signed.
func (c *Config) OSSEnabled() bool {
	return c.OSSEndpoint != "" && c.OSSBucketName != "" && c.OSSAccessKeyID != ""
}

// Validate checks the settings the service cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.UsageStore {
	case "database", "redis":
	default:
		return fmt.Errorf("unsupported USAGE_STORE %q", c.UsageStore)
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	if c.FreeDailyLimit < 0 {
		return errors.New("FREE_DAILY_LIMIT must not be negative")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		DBPath:     getEnv("DB_PATH", "partnerhub.db"),

		RedisAddr:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		UsageStore:    getEnv("USAGE_STORE", "database"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 30),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		FreeDailyLimit:  getEnvAsInt("FREE_DAILY_LIMIT", 1),
		PartnersFile:    os.Getenv("PARTNERS_FILE"),
		CORSOrigins:     getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),

		LLMBaseURL:   getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:    os.Getenv("LLM_API_KEY"),
		LLMTimeout:   getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LLMMaxTokens: getEnvAsInt("LLM_MAX_TOKENS", 1024),

		CostText:     int64(getEnvAsInt("COST_TEXT", 1)),
		CostImage:    int64(getEnvAsInt("COST_IMAGE", 5)),
		CostAudio:    int64(getEnvAsInt("COST_AUDIO", 3)),
		CostVideo:    int64(getEnvAsInt("COST_VIDEO", 10)),
		CostDocument: int64(getEnvAsInt("COST_DOCUMENT", 2)),

		OSSEndpoint:        os.Getenv("OSS_ENDPOINT"),
		OSSRegion:          os.Getenv("OSS_REGION"),
		OSSBucketName:      os.Getenv("OSS_BUCKET_NAME"),
		OSSAccessKeyID:     os.Getenv("OSS_ACCESS_KEY_ID"),
		OSSAccessKeySecret: os.Getenv("OSS_ACCESS_KEY_SECRET"),
		OSSRoleArn:         os.Getenv("OSS_ROLE_ARN"),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
