package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"resume-screener/internal/shared/telemetry"
)

// DefaultMaxUploadBytes caps a multipart upload at 16 MiB.
const DefaultMaxUploadBytes int64 = 16 << 20

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	S3Endpoint      string
	ArchiveUploads  bool

	TaxonomyFile    string
	DefaultIndustry string
	MatchMode       string

	// Salary overrides are nil when unset so that an explicit 0 is honored.
	SalaryCurrency            string
	SalaryBase                *int
	SalaryTechnicalWeight     *int
	SalaryCertificationWeight *int

	MaxUploadBytes    int64
	WorkerConcurrency int
	RateLimitRPS      float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables with sensible defaults.
// Values already present in the environment win over .env files.
func Load() Config {
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		ArchiveUploads:  getBool("ARCHIVE_UPLOADS", false),

		TaxonomyFile:    getEnv("TAXONOMY_FILE", ""),
		DefaultIndustry: strings.ToLower(getEnv("DEFAULT_INDUSTRY", "")),
		MatchMode:       strings.ToLower(getEnv("MATCH_MODE", "substring")),

		SalaryCurrency:            getEnv("SALARY_CURRENCY", "₱"),
		SalaryBase:                getOptionalInt("SALARY_BASE"),
		SalaryTechnicalWeight:     getOptionalInt("SALARY_TECHNICAL_WEIGHT"),
		SalaryCertificationWeight: getOptionalInt("SALARY_CERTIFICATION_WEIGHT"),

		MaxUploadBytes:    int64(getInt("MAX_UPLOAD_BYTES", int(DefaultMaxUploadBytes))),
		WorkerConcurrency: getInt("WORKER_CONCURRENCY", 4),
		RateLimitRPS:      getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getInt("RATE_LIMIT_BURST", 10),
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func getOptionalInt(key string) *int {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return nil
	}
	return &v
}

func getFloat(key string, def float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid_bool", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
