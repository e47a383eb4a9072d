package config

import (
	"os"
	"strconv"
)

type Config struct {
	GeminiApiKey        string
	QueryGeneratorModel string
	ReflectionModel     string
	AnswerModel         string
	InitialQueryCount   int
	MaxResearchLoops    int
	Port                string
}

func Load() *Config {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	return &Config{
		GeminiApiKey:        apiKey,
		QueryGeneratorModel: getEnv("QUERY_GENERATOR_MODEL", "gemini-3-flash-preview"),
		ReflectionModel:     getEnv("REFLECTION_MODEL", "gemini-3-pro-preview"),
		AnswerModel:         getEnv("ANSWER_MODEL", "gemini-3-pro-preview"),
		InitialQueryCount:   getEnvAsInt("INITIAL_QUERY_COUNT", 3),
		MaxResearchLoops:    getEnvAsInt("MAX_RESEARCH_LOOPS", 2),
		Port:                getEnv("PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
