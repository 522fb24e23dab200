// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server settings,
// logging, database and artifact paths, AI capability keys, object-store
// credentials, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/studybuddy/go-study-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ObjectStoreConfig defines the remote tier of the content store. All fields
// empty means the remote tier is disabled and the service runs local-only.
type ObjectStoreConfig struct {
	Endpoint  string // OBJECT_STORE_ENDPOINT (host:port)
	AccessKey string // OBJECT_STORE_ACCESS_KEY
	SecretKey string // OBJECT_STORE_SECRET_KEY
	Bucket    string // OBJECT_STORE_BUCKET
	UseSSL    bool   // OBJECT_STORE_USE_SSL
}

// Enabled reports whether enough credentials are present to reach the remote
// tier. Missing credentials are a soft degrade, not a startup failure.
func (o ObjectStoreConfig) Enabled() bool {
	return strings.TrimSpace(o.Endpoint) != "" && strings.TrimSpace(o.Bucket) != ""
}

// AIConfig holds the generative-model and narration capability settings.
type AIConfig struct {
	GeminiAPIKey string // GEMINI_API_KEY (required)
	GeminiModel  string // GEMINI_MODEL
	TTSAPIKey    string // TTS_API_KEY (defaults to GEMINI_API_KEY)
	TTSVoice     string // TTS_VOICE
	TTSLanguage  string // TTS_LANGUAGE
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool

	// App
	DBPath        string        // SQLite path
	DataDir       string        // root of the local artifact tier
	MaxUploadMB   int64         // multipart upload cap
	SessionTTL    time.Duration // bearer session lifetime
	SignedURLTTL  time.Duration // presigned read-URL lifetime
	MaxSpeechLen  int           // narration input cap, in characters
	MaxQuizSource int           // quiz source-text cap, in characters

	// Capabilities
	AI AIConfig

	// Remote tier
	ObjectStore ObjectStoreConfig

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
//
// GEMINI_API_KEY is a hard requirement: without the explanation capability the
// pipeline cannot produce anything. Object-store credentials are optional;
// when absent, every remote-tier operation degrades to the local tier.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 10*time.Minute),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		DBPath:        getenv("DB_PATH", "instance/studybuddy.db"),
		DataDir:       getenv("DATA_DIR", "uploads"),
		MaxUploadMB:   int64(getint("MAX_UPLOAD_MB", 50)),
		SessionTTL:    getdur("SESSION_TTL", 7*24*time.Hour),
		SignedURLTTL:  getdur("SIGNED_URL_TTL", 30*time.Minute),
		MaxSpeechLen:  getint("MAX_SPEECH_LEN", 5000),
		MaxQuizSource: getint("MAX_QUIZ_SOURCE", 8000),

		AI: AIConfig{
			GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
			GeminiModel:  getenv("GEMINI_MODEL", "gemini-1.5-pro"),
			TTSAPIKey:    getenv("TTS_API_KEY", ""),
			TTSVoice:     getenv("TTS_VOICE", "en-IN-Chirp3-HD-Achernar"),
			TTSLanguage:  getenv("TTS_LANGUAGE", "en-IN"),
		},

		ObjectStore: ObjectStoreConfig{
			Endpoint:  getenv("OBJECT_STORE_ENDPOINT", ""),
			AccessKey: getenv("OBJECT_STORE_ACCESS_KEY", ""),
			SecretKey: getenv("OBJECT_STORE_SECRET_KEY", ""),
			Bucket:    getenv("OBJECT_STORE_BUCKET", "studybuddy-pdf-storage"),
			UseSSL:    getbool("OBJECT_STORE_USE_SSL", false),
		},

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-study-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.AI.TTSAPIKey = sysutil.FirstNonEmpty(cfg.AI.TTSAPIKey, cfg.AI.GeminiAPIKey)

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return cfg, errors.New("DATA_DIR must not be empty")
	}
	if strings.TrimSpace(cfg.AI.GeminiAPIKey) == "" {
		return cfg, errors.New("GEMINI_API_KEY is required")
	}
	if cfg.MaxUploadMB < 1 {
		return cfg, errors.New("MAX_UPLOAD_MB must be >= 1")
	}
	if cfg.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.SignedURLTTL <= 0 {
		return cfg, errors.New("SIGNED_URL_TTL must be > 0")
	}
	if cfg.MaxSpeechLen < 1 || cfg.MaxQuizSource < 1 {
		return cfg, errors.New("MAX_SPEECH_LEN and MAX_QUIZ_SOURCE must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- env helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return sysutil.AtoiDefault(v, def)
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
