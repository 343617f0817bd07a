package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Data      DataConfig      `mapstructure:"data"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

type QdrantConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	APIKey          string `mapstructure:"api_key"`
	NodeCollection  string `mapstructure:"node_collection"`
	ImageCollection string `mapstructure:"image_collection"`
}

type EmbeddingConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	TextDim     int    `mapstructure:"text_dim"`
	ClipDim     int    `mapstructure:"clip_dim"`
}

type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// RetrievalConfig carries the tunable numeric policy of the ranking engine.
// The defaults are the values the index was calibrated against; changing them
// changes which images clear the score gates.
type RetrievalConfig struct {
	TextTopK           int     `mapstructure:"text_top_k"`
	VisualTopK         int     `mapstructure:"visual_top_k"`
	KeywordTopK        int     `mapstructure:"keyword_top_k"`
	SampleLimit        int     `mapstructure:"sample_limit"`
	MaxImages          int     `mapstructure:"max_images"`
	NumCandidates      int     `mapstructure:"num_candidates"`
	VisualThreshold    float64 `mapstructure:"visual_threshold"`
	LinkedThreshold    float64 `mapstructure:"linked_threshold"`
	LinkedDefaultScore float64 `mapstructure:"linked_default_score"`
}

type DataConfig struct {
	Dir           string `mapstructure:"dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// Load reads config.yaml (working directory or ./config) merged with
// environment overrides. A missing file falls back to defaults; a missing
// LLM credential is a hard error so the service never starts half-configured.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	if cfg.LLM.APIKey == "" {
		return nil, errors.New("LLM API key is not set (GROQ_API_KEY)")
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "remodela")
	viper.SetDefault("database.database", "remodela")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("qdrant.host", "localhost")
	viper.SetDefault("qdrant.port", 6334)
	viper.SetDefault("qdrant.node_collection", "catalog_nodes")
	viper.SetDefault("qdrant.image_collection", "catalog_images")

	viper.SetDefault("embedding.base_url", "http://localhost:9090")
	viper.SetDefault("embedding.timeout_secs", 30)
	viper.SetDefault("embedding.text_dim", 384)
	viper.SetDefault("embedding.clip_dim", 512)

	viper.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("llm.model", "llama-3.1-8b-instant")

	viper.SetDefault("retrieval.text_top_k", 10)
	viper.SetDefault("retrieval.visual_top_k", 16)
	viper.SetDefault("retrieval.keyword_top_k", 10)
	viper.SetDefault("retrieval.sample_limit", 4)
	viper.SetDefault("retrieval.max_images", 12)
	viper.SetDefault("retrieval.num_candidates", 100)
	viper.SetDefault("retrieval.visual_threshold", 0.25)
	viper.SetDefault("retrieval.linked_threshold", 0.22)
	viper.SetDefault("retrieval.linked_default_score", 0.22)

	viper.SetDefault("data.dir", "Data")
	viper.SetDefault("data.public_base_url", "http://localhost:8000")
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("REMODELA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	if qHost := os.Getenv("QDRANT_HOST"); qHost != "" {
		cfg.Qdrant.Host = qHost
	}
	if qKey := os.Getenv("QDRANT_API_KEY"); qKey != "" {
		cfg.Qdrant.APIKey = qKey
	}

	if embURL := os.Getenv("EMBEDDING_BASE_URL"); embURL != "" {
		cfg.Embedding.BaseURL = embURL
	}

	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
}
