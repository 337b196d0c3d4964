package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Gemini   GeminiConfig
	RAG      RAGConfig
	Vector   VectorConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string `validate:"required"`
	Env            string
	AllowedOrigins []string
}

type AuthConfig struct {
	// Token is the shared bearer secret expected on POST /api/review.
	Token string `validate:"required"`
}

type GeminiConfig struct {
	APIKey         string  `validate:"required"`
	Model          string  `validate:"required"`
	EmbeddingModel string  `validate:"required"`
	Temperature    float32 `validate:"gte=0,lte=2"`
	MaxTokens      int32   `validate:"gt=0"`
}

type RAGConfig struct {
	ChunkSize    int `validate:"gt=0"`
	ChunkOverlap int `validate:"gte=0,ltfield=ChunkSize"`
	TopK         int `validate:"gt=0"`
}

type VectorConfig struct {
	Backend      string `validate:"oneof=memory qdrant"`
	QdrantURL    string
	QdrantAPIKey string
}

type StorageConfig struct {
	MaxFileSize int64 `validate:"gt=0"`
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

// Load reads .env (if present) and the process environment once. It fails when
// a required secret is missing or the retrieval parameters are inconsistent.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	v := newViper()

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			Env:            v.GetString("ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			Token: strings.TrimSpace(v.GetString("API_AUTH_TOKEN")),
		},
		Gemini: GeminiConfig{
			APIKey:         strings.TrimSpace(v.GetString("GOOGLE_API_KEY")),
			Model:          v.GetString("GOOGLE_MODEL_NAME"),
			EmbeddingModel: v.GetString("GOOGLE_EMBEDDING_MODEL"),
			Temperature:    float32(v.GetFloat64("LLM_TEMPERATURE")),
			MaxTokens:      v.GetInt32("LLM_MAX_TOKENS"),
		},
		RAG: RAGConfig{
			ChunkSize:    v.GetInt("CHUNK_SIZE"),
			ChunkOverlap: v.GetInt("CHUNK_OVERLAP"),
			TopK:         v.GetInt("RETRIEVAL_TOP_K"),
		},
		Vector: VectorConfig{
			Backend:      strings.ToLower(v.GetString("VECTOR_BACKEND")),
			QdrantURL:    v.GetString("QDRANT_URL"),
			QdrantAPIKey: v.GetString("QDRANT_API_KEY"),
		},
		Storage: StorageConfig{
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Log: LogConfig{
			JSON:  v.GetBool("LOG_JSON"),
			Debug: v.GetBool("LOG_DEBUG"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("API_AUTH_TOKEN", "")
	v.SetDefault("GOOGLE_API_KEY", "")
	v.SetDefault("GOOGLE_MODEL_NAME", "gemini-2.5-flash")
	v.SetDefault("GOOGLE_EMBEDDING_MODEL", "text-embedding-004")
	v.SetDefault("LLM_TEMPERATURE", 0.6)
	v.SetDefault("LLM_MAX_TOKENS", 2048)
	v.SetDefault("CHUNK_SIZE", 1200)
	v.SetDefault("CHUNK_OVERLAP", 250)
	v.SetDefault("RETRIEVAL_TOP_K", 5)
	v.SetDefault("VECTOR_BACKEND", "memory")
	v.SetDefault("QDRANT_URL", "http://localhost:6334")
	v.SetDefault("QDRANT_API_KEY", "")
	v.SetDefault("MAX_FILE_SIZE", 10485760)
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cv_reviewer")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("LOG_DEBUG", false)

	v.AutomaticEnv()
	return v
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
