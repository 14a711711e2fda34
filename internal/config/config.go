package config

import (
	"os"
	"strconv"
)

type Config struct {
	ChatDir      string
	ChunksFile   string
	Port         int
	DatabaseURL  string
	OllamaURL    string
	ChatModel    string
	EmbedModel   string
	EmbedBatch   int
	ExtractBatch int
	TopK         int
	NatsURL      string
	NatsToken    string
	LogLevel     string
}

func Load() Config {
	return Config{
		ChatDir:      envStr("CONVOMAP_CHAT_DIR", "./chats"),
		ChunksFile:   envStr("CONVOMAP_CHUNKS_FILE", "./all_chunks.json"),
		Port:         envInt("CONVOMAP_PORT", 8780),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		OllamaURL:    envStr("OLLAMA_URL", "http://localhost:11434"),
		ChatModel:    envStr("OLLAMA_CHAT_MODEL", "mistral"),
		EmbedModel:   envStr("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		EmbedBatch:   envInt("CONVOMAP_EMBED_BATCH", 100),
		ExtractBatch: envInt("CONVOMAP_EXTRACT_BATCH", 50),
		TopK:         envInt("CONVOMAP_TOP_K", 3),
		NatsURL:      envStr("NATS_URL", ""),
		NatsToken:    envStr("NATS_TOKEN", ""),
		LogLevel:     envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
