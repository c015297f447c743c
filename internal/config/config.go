package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Ai       AIConfig
	Pipeline PipelineConfig
	Data     DataConfig
	SMTP     SMTPConfig
	Twilio   TwilioConfig
}

type AppConfig struct {
	Port            string
	Environment     string
	LogFilePath     string
	AuditLogPath    string
	NatsURL         string
	RedisURL        string
	JwtSecret       string
	DeliveryBackend string // "nats" | "twilio"
	HelplineText    string
	WeatherBaseURL  string
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Backend       string // "memory" | "redis"
	TTL           time.Duration
	ProcessingTTL time.Duration
	LockTimeout   time.Duration
}

type AIConfig struct {
	LLMProvider       string // "ollama" | "gemini"
	LLMModel          string
	EmbeddingProvider string // "ollama" | "gemini"
	EmbeddingModel    string
	OllamaBaseURL     string
	GeminiAPIKey      string
}

type PipelineConfig struct {
	// Timeout bounds a whole request. Zero means the sum of the stage budgets.
	Timeout              time.Duration
	AggregationTimeout   time.Duration
	DecompositionTimeout time.Duration
	GenerationTimeout    time.Duration
	AuditTimeout         time.Duration
	RetrievalTimeout     time.Duration
	RetrievalK           int
	SimilarityThreshold  float64
	MaxQueries           int
	MaxMessageLength     int
}

type DataConfig struct {
	BannedPesticidesPath string
	VarietiesPath        string
	CropsPath            string
	DistrictsPath        string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Email       string
	Password    string
	SenderName  string
	ExpertEmail string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:            getEnv("APP_PORT", "3000"),
			Environment:     getEnv("GO_ENV", "development"),
			LogFilePath:     getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogPath:    getEnv("AUDIT_LOG_PATH", "logs/advisory_audit.log"),
			NatsURL:         getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:       getEnv("JWT_SECRET", ""),
			DeliveryBackend: getEnv("DELIVERY_BACKEND", "nats"),
			HelplineText:    getEnv("HELPLINE_TEXT", "किसान कॉल सेंटर: 1800-180-1551 (टोल फ्री)"),
			WeatherBaseURL:  getEnv("WEATHER_BASE_URL", "https://api.open-meteo.com"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Backend:       getEnv("SESSION_BACKEND", "memory"),
			TTL:           getEnvAsDuration("SESSION_TTL", 5*time.Minute),
			ProcessingTTL: getEnvAsDuration("SESSION_PROCESSING_TTL", 15*time.Minute),
			LockTimeout:   getEnvAsDuration("SESSION_LOCK_TIMEOUT", 3*time.Second),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.0-flash"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Pipeline: PipelineConfig{
			Timeout:              getEnvAsDuration("PIPELINE_TIMEOUT", 0),
			AggregationTimeout:   getEnvAsDuration("STAGE_AGGREGATION_TIMEOUT", 90*time.Second),
			DecompositionTimeout: getEnvAsDuration("STAGE_DECOMPOSITION_TIMEOUT", 60*time.Second),
			GenerationTimeout:    getEnvAsDuration("STAGE_GENERATION_TIMEOUT", 120*time.Second),
			AuditTimeout:         getEnvAsDuration("STAGE_AUDIT_TIMEOUT", 90*time.Second),
			RetrievalTimeout:     getEnvAsDuration("STAGE_RETRIEVAL_TIMEOUT", 60*time.Second),
			RetrievalK:           getEnvAsInt("RETRIEVAL_K", 5),
			SimilarityThreshold:  getEnvAsFloat("RETRIEVAL_SIMILARITY_THRESHOLD", 0.55),
			MaxQueries:           getEnvAsInt("MAX_COLLECTED_QUERIES", 5),
			MaxMessageLength:     getEnvAsInt("MAX_MESSAGE_LENGTH", 4000),
		},
		Data: DataConfig{
			BannedPesticidesPath: getEnv("BANNED_PESTICIDES_PATH", "data/banned_pesticides.json"),
			VarietiesPath:        getEnv("VARIETIES_PATH", "data/varieties.yaml"),
			CropsPath:            getEnv("CROPS_PATH", "data/crops.yaml"),
			DistrictsPath:        getEnv("DISTRICTS_PATH", "data/districts.yaml"),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "Kisan Advisory"),
			ExpertEmail: getEnv("EXPERT_EMAIL", ""),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_WHATSAPP_FROM", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
