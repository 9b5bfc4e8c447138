package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string `ignored:"true"` // Set via flag, not env
	AppEnv  string `envconfig:"APP_ENV" default:"development"`

	// MongoDB
	MongoURI    string `envconfig:"MONGO_URI" required:"true"`
	MongoDbName string `envconfig:"MONGO_DB_NAME" default:"homznspace"`

	// Redis. Empty address disables the areas cache and the notification queue.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// JWT
	JwtSecret string        `envconfig:"JWT_SECRET"`
	JwtTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// Server
	ApiPort           string `envconfig:"API_PORT" default:"6005"`
	ServiceApiPort    string `envconfig:"SERVICE_API_PORT" default:"12345"`
	PublicBaseURL     string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:6005"`
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honoured.
	// Empty means the TCP peer address identifies the client.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	// Uploads
	UploadDir         string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadSizeMB   int    `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`
	ImageMaxDimension int    `envconfig:"IMAGE_MAX_DIMENSION" default:"2048"`

	// Email
	SmtpHost           string `envconfig:"SMTP_HOST"`
	SmtpPort           int    `envconfig:"SMTP_PORT" default:"587"`
	SmtpUsername       string `envconfig:"SMTP_USERNAME"`
	SmtpPassword       string `envconfig:"SMTP_PASSWORD"`
	SmtpFromAddress    string `envconfig:"SMTP_FROM_ADDRESS" default:"noreply@homznspace.com"`
	AdminEmail         string `envconfig:"ADMIN_EMAIL"`
	QueueNotifications bool   `envconfig:"QUEUE_NOTIFICATIONS" default:"false"`
	MockServices       bool   `envconfig:"MOCK_SERVICES" default:"false"`
	LogEmailsPath      string `envconfig:"LOG_EMAILS"`

	// AWS S3. Setting the bucket switches blob storage from local disk to S3.
	AwsAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AwsSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AwsRegion          string `envconfig:"AWS_REGION"`
	AwsS3Bucket        string `envconfig:"AWS_S3_BUCKET"`
	ImageBaseS3URL     string `envconfig:"IMAGE_BASE_S3_URL"`

	// App Defaults
	AppName     string        `envconfig:"APP_NAME" default:"Homznspace"`
	DefaultCity string        `envconfig:"DEFAULT_CITY" default:"Coimbatore"`
	GetCacheTTL time.Duration `envconfig:"GET_CACHE_TTL" default:"60s"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// Rate Limiting Defaults
	RateLimitSoftBucketSize int `envconfig:"RATE_LIMIT_SOFT_BUCKET_SIZE" default:"5"`
	RateLimitSoftRefillRate int `envconfig:"RATE_LIMIT_SOFT_REFILL_RATE" default:"1"` // tokens per second
	RateLimitHardBucketSize int `envconfig:"RATE_LIMIT_HARD_BUCKET_SIZE" default:"20"`
	RateLimitHardRefillRate int `envconfig:"RATE_LIMIT_HARD_REFILL_RATE" default:"5"` // tokens per second

	// GeneratedJwtSecret is true when no JWT_SECRET was supplied in development.
	GeneratedJwtSecret bool `ignored:"true"`
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}
	cfg.RunMode = runMode

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")

	if c.JwtSecret == "" {
		if c.AppEnv != EnvDevelopment {
			return fmt.Errorf("missing required environment variable: JWT_SECRET (APP_ENV=%s)", c.AppEnv)
		}
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate development JWT secret: %w", err)
		}
		c.JwtSecret = secret
		c.GeneratedJwtSecret = true
	}
	if c.JwtTTL <= 0 {
		return fmt.Errorf("invalid JWT_TTL: %s", c.JwtTTL)
	}
	if c.ImageMaxDimension <= 0 {
		return fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %d", c.ImageMaxDimension)
	}
	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE_MB: %d", c.MaxUploadSizeMB)
	}
	return nil
}

// UsesS3 reports whether uploads go to S3 rather than the local upload dir.
func (c *Config) UsesS3() bool {
	return c.AwsS3Bucket != ""
}

// HasRedis reports whether a Redis server is configured.
func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
