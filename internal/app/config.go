package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS"`

	LogMode      string `envconfig:"LOG_MODE" default:"development"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"debug"`
	LogRedaction bool   `envconfig:"LOG_REDACTION" default:"true"`
	LogHashSalt  string `envconfig:"LOG_HASH_SALT"`

	DBDriver         string `envconfig:"DB_DRIVER" default:"postgres"`
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresName     string `envconfig:"POSTGRES_NAME" default:"ceustudio"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"ceustudio.db"`

	JWTSecretKey      string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	AccessTokenTTL    time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"`
	AdminEmail        string        `envconfig:"ADMIN_EMAIL"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`
	AdminSessionTTL   time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"168h"`
	AdminCookieSecure bool          `envconfig:"ADMIN_COOKIE_SECURE" default:"true"`

	AirtableBaseID  string `envconfig:"AIRTABLE_BASE_ID"`
	AirtableToken   string `envconfig:"AIRTABLE_TOKEN"`
	AirtableTable   string `envconfig:"AIRTABLE_TABLE_NAME" default:"Waitlist"`
	AirtableBaseURL string `envconfig:"AIRTABLE_BASE_URL"`

	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel          string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAITimeoutSeconds int    `envconfig:"OPENAI_TIMEOUT_SECONDS" default:"30"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisChannel  string `envconfig:"REDIS_CHANNEL" default:"ceustudio:sse"`

	CertificateBucket  string        `envconfig:"CERTIFICATE_GCS_BUCKET"`
	CourseAssetBucket  string        `envconfig:"COURSE_ASSET_GCS_BUCKET"`
	GCSEmulatorHost    string        `envconfig:"STORAGE_EMULATOR_HOST"`
	GCSPublicBaseURL   string        `envconfig:"GCS_PUBLIC_BASE_URL"`
	GCPCredentials     string        `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
	CertificateFont    string        `envconfig:"CERTIFICATE_FONT"`
	CatalogSeedPath    string        `envconfig:"CATALOG_SEED_PATH"`
	IngestionDelay     time.Duration `envconfig:"INGESTION_DELAY" default:"1500ms"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"20"`

	MetricsEnabled  bool    `envconfig:"METRICS_ENABLED" default:"true"`
	OtelEnabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OtelServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"ceustudio-api"`
	OtelEnvironment string  `envconfig:"OTEL_ENVIRONMENT" default:"development"`
	OtelVersion     string  `envconfig:"OTEL_SERVICE_VERSION"`
	OtelEndpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	OtelSampleRatio float64 `envconfig:"OTEL_SAMPLE_RATIO" default:"1"`
}

// LoadConfig reads .env when present and then the process environment, which
// wins over the file.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		return Config{}, fmt.Errorf("load config: JWT_SECRET_KEY is empty")
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("load config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

func (c Config) AirtableConfigured() bool {
	return strings.TrimSpace(c.AirtableBaseID) != "" && strings.TrimSpace(c.AirtableToken) != ""
}

func (c Config) StorageConfigured() bool {
	return strings.TrimSpace(c.CertificateBucket) != "" || strings.TrimSpace(c.CourseAssetBucket) != ""
}
