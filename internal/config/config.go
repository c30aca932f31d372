package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	OpenAIAPIKey  string
	DatabasePath  string
	HTTPPort      string
	Debug         bool
	PersonaName   string
	ProfileDir    string
	PushoverToken string
	PushoverUser  string
	ChunkMaxChars int
	ChunkOverlap  int
	RetrievalTopK int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		DatabasePath:  getEnv("DATABASE_PATH", "knowledge.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		Debug:         getEnv("DEBUG", "") == "true",
		PersonaName:   getEnv("PERSONA_NAME", "Prashant Sharma"),
		ProfileDir:    getEnv("PROFILE_DIR", "me"),
		PushoverToken: getEnv("PUSHOVER_TOKEN", ""),
		PushoverUser:  getEnv("PUSHOVER_USER", ""),
		ChunkMaxChars: getEnvAsInt("CHUNK_MAX_CHARS", 800),
		ChunkOverlap:  getEnvAsInt("CHUNK_OVERLAP", 100),
		RetrievalTopK: getEnvAsInt("RETRIEVAL_TOP_K", 4),
	}

	if AppConfig.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
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
