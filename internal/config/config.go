package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	Debug       bool
	JWTSecret   string
	CORSOrigins []string

	DBDriver   string
	DBDSN      string
	IDStrategy string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI provider
	AIProvider        string
	AIModel           string
	ProviderCatalog   string
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	AnthropicAPIKey   string

	// context selection
	ProjectRoot         string
	ContextMaxFiles     int
	ContextMaxFileBytes int
	PreviewTimeout      time.Duration

	// rabbitMQ
	RabbitURL         string
	RabbitQueue       string
	WorkerConcurrency int
}

// Load reads the environment, after loading .env when one is present.
func Load() Config {
	_ = godotenv.Load()

	driver := strings.ToLower(getEnv("DB_DRIVER", "sqlite"))

	// mysql demo:
	// app:apppass@tcp(127.0.0.1:3306)/codeassist?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" && driver == "sqlite" {
		dsn = "codeassist.db"
	}

	// an empty secret leaves the API open
	secret := os.Getenv("JWT_SECRET")

	// AI provider config
	aiProvider := os.Getenv("AI_PROVIDER")
	if aiProvider == "" {
		aiProvider = "Ollama"
	}

	return Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		Debug:       getBool("DEBUG"),
		JWTSecret:   secret,
		CORSOrigins: getList("CORS_ORIGINS"),

		DBDriver:   driver,
		DBDSN:      dsn,
		IDStrategy: getEnv("ID_STRATEGY", "sequential"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		AIProvider:        aiProvider,
		AIModel:           os.Getenv("AI_MODEL"),
		ProviderCatalog:   os.Getenv("PROVIDER_CATALOG"),
		OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3:latest"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openrouter/auto"),
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),

		ProjectRoot:         getEnv("PROJECT_ROOT", "/home/project"),
		ContextMaxFiles:     getInt("CONTEXT_MAX_FILES", 50),
		ContextMaxFileBytes: getInt("CONTEXT_MAX_FILE_BYTES", 2000),
		PreviewTimeout:      getDuration("PREVIEW_TIMEOUT", 2*time.Minute),

		RabbitURL:         os.Getenv("RABBIT_URL"),
		RabbitQueue:       getEnv("RABBIT_QUEUE", "usage_events"),
		WorkerConcurrency: workerConcurrency(),
	}
}

func workerConcurrency() int {
	n := getInt("WORKER_CONCURRENCY", 2)
	if n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getList splits a comma-separated variable, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
