package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the env file named by CLARION_ENV (default ".env") plus its
// ".secret" sidecar when present. Missing files are not an error; all
// lookups go through os.Getenv afterwards.
func Load() error {
	envFile := os.Getenv("CLARION_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func ServerPort() int { return envInt("SERVER_PORT", 8080) }

func ServerAddr() string { return fmt.Sprintf(":%d", ServerPort()) }

func DatabaseURL() string { return os.Getenv("DATABASE_URL") }

func OpenAIAPIKey() string { return os.Getenv("OPENAI_API_KEY") }

func AnthropicAPIKey() string { return os.Getenv("ANTHROPIC_API_KEY") }

func GeminiAPIKey() string { return os.Getenv("GEMINI_API_KEY") }

// LLMProvider names the backend serving evaluator and fixer calls.
// Valid values: openai, anthropic, gemini, mock.
func LLMProvider() string { return envString("LLM_PROVIDER", "openai") }

// EmbeddingProvider names the backend for source-document embeddings.
// Valid values: openai, mock.
func EmbeddingProvider() string { return envString("EMBEDDING_PROVIDER", "openai") }

// LLMAPIKey returns the key matching the configured panel provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

func EmbeddingAPIKey() string {
	if EmbeddingProvider() == "mock" {
		return ""
	}
	return OpenAIAPIKey()
}

// DisagreementTolerance is the largest per-dimension score spread the panel
// may show before a discussion round is triggered.
func DisagreementTolerance() float64 { return envFloat("PANEL_DISAGREEMENT_TOLERANCE", 2.0) }

// RepairThreshold is the dimension score below which a fixer is deployed.
func RepairThreshold() float64 { return envFloat("REPAIR_THRESHOLD", 7.0) }

// QualityGate is the overall score a brief must reach to pass refinement.
func QualityGate() float64 { return envFloat("QUALITY_GATE", 8.0) }

// MaxRefineAttempts bounds the fix-and-rescore loop.
func MaxRefineAttempts() int { return envInt("MAX_REFINE_ATTEMPTS", 3) }

func RateLimitRPS() float64 { return envFloat("RATE_LIMIT_RPS", 100) }

func RateLimitBurst() int { return envInt("RATE_LIMIT_BURST", 20) }

// LogLevel is one of debug, info, warn, error.
func LogLevel() string { return envString("LOG_LEVEL", "info") }
