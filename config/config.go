package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

const devJWTSecret = "dev-secret-change-me"

type Config struct {
	// Server
	Port         string
	Environment  string
	CORSOrigins  []string
	AuthRequired bool

	// Store
	StoreDriver     string
	MongoURI        string
	DBName          string
	MongoClient     *mongo.Client
	UseTransactions bool
	RequestTimeout  time.Duration

	// Session tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Identity provider tokens presented to the auth callback
	IdentityPublicKey string
	IdentityIssuer    string
	IdentityAudience  string

	// Maintenance endpoints
	AdminToken string

	// Simulated chain
	PaymentFailureRate float64
	PaymentSeed        int64

	// Redis metrics cache
	RedisURL        string
	MetricsCacheTTL time.Duration

	// Broadcasts
	RabbitMQURL        string
	RabbitMQQueue      string
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubUserID       string

	// Cloudinary
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// ZeptoMail
	ZeptoAPIURL string
	ZeptoAPIKey string
	EmailFrom   string
}

// LoadEnvFile loads key=value pairs from path into the process environment.
// Variables that are already set win over the file.
func LoadEnvFile(path string) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("env file not loaded", "path", path, "error", err)
		return
	}
	slog.Info("loaded env file", "path", path)
}

func LoadConfig() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		CORSOrigins:  getEnvAsList("CORS_ORIGINS", "http://localhost:3000"),
		AuthRequired: getEnvAsBool("AUTH_REQUIRED", false),

		StoreDriver:     getEnv("STORE_DRIVER", StoreMongo),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("DB_NAME", "nft_ticketing"),
		UseTransactions: getEnvAsBool("MONGO_TRANSACTIONS", false),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", "5s"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvAsDuration("JWT_TTL", "24h"),

		IdentityPublicKey: getEnv("IDP_PUBLIC_KEY", ""),
		IdentityIssuer:    getEnv("IDP_ISSUER", ""),
		IdentityAudience:  getEnv("IDP_AUDIENCE", ""),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		PaymentFailureRate: getEnvAsFloat("PAYMENT_FAILURE_RATE", 0.1),
		PaymentSeed:        int64(getEnvAsInt("PAYMENT_SEED", 0)),

		RedisURL:        getEnv("REDIS_URL", ""),
		MetricsCacheTTL: getEnvAsDuration("METRICS_CACHE_TTL", "30s"),

		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue:      getEnv("RABBITMQ_QUEUE", "ticket_purchases"),
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "nft-ticketing-api"),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		ZeptoAPIURL: getEnv("ZEPTO_API_URL", ""),
		ZeptoAPIKey: getEnv("ZEPTO_API_KEY", ""),
		EmailFrom:   getEnv("EMAIL_FROM", ""),
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg
}

// Validate reports settings the server must not start with.
func (cfg *Config) Validate() error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if cfg.IsProduction() && cfg.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must not use the development default in production")
	}
	if cfg.AuthRequired && cfg.IdentityPublicKey == "" {
		return errors.New("AUTH_REQUIRED needs IDP_PUBLIC_KEY to issue sessions")
	}
	return nil
}

// ConnectMongo dials MONGO_URI, pings the primary and stores the client on cfg.
func (cfg *Config) ConnectMongo(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	cfg.MongoClient = client
	return nil
}

func (cfg *Config) Database() *mongo.Database {
	return cfg.MongoClient.Database(cfg.DBName)
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == "production"
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsList(key, defaultValue string) []string {
	parts := strings.Split(getEnv(key, defaultValue), ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
