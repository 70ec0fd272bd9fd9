package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the application's top-level configuration, loaded once at
// process start. Setting-table values are dynamic and are never bound here.
type Config struct {
	Server        *ServerConfig        `yaml:"server" json:"server"`
	Database      *DatabaseConfig      `yaml:"database" json:"database"`
	Redis         *RedisConfig         `yaml:"redis" json:"redis"`
	Chunker       *ChunkerConfig       `yaml:"chunker" json:"chunker"`
	Embedding     *ModelConfig         `yaml:"embedding" json:"embedding"`
	Generative    *ModelConfig         `yaml:"generative" json:"generative"`
	ChatNetwork   *ChatNetworkConfig   `yaml:"chat_network" json:"chat_network"`
	Transcript    *TranscriptConfig    `yaml:"transcript" json:"transcript"`
	ObjectStorage *ObjectStorageConfig `yaml:"object_storage" json:"object_storage"`
	EntityGraph   *EntityGraphConfig  `yaml:"entity_graph" json:"entity_graph"`
	KeywordIndex  *KeywordIndexConfig `yaml:"keyword_index" json:"keyword_index"`
	Retrieval     *RetrievalConfig    `yaml:"retrieval" json:"retrieval"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port" json:"port"`
	Host            string        `yaml:"host" json:"host"`
	LogPath         string        `yaml:"log_path" json:"log_path"`
	WebhookBaseURL  string        `yaml:"webhook_base_url" json:"webhook_base_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" default:"30s"`
}

// DatabaseConfig configures the Postgres+pgvector connection.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" json:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// RedisConfig backs both the setting cache and the asynq job queue.
type RedisConfig struct {
	Address  string        `yaml:"address" json:"address"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" default:"5m"`
}

// ChunkerConfig holds the default split parameters; per-call overrides win.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size" json:"chunk_size" default:"1000"`
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap" default:"200"`
}

// ModelConfig configures one external model binding (embedding or
// generative), dispatched on Source ("openai" or "ollama").
type ModelConfig struct {
	Source    string        `yaml:"source" json:"source"`
	ModelName string        `yaml:"model_name" json:"model_name"`
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	APIKey    string        `yaml:"api_key" json:"api_key"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// ChatNetworkConfig holds the credentials the chat ingestor uses to open its
// long-lived session.
type ChatNetworkConfig struct {
	APIID             string        `yaml:"api_id" json:"api_id"`
	APIHash           string        `yaml:"api_hash" json:"api_hash"`
	SessionString     string        `yaml:"session_string" json:"session_string"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval" json:"reconcile_interval" default:"1h"`
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay" json:"reconnect_max_delay" default:"1m"`
}

// TranscriptConfig holds the transcript provider's endpoint and token.
type TranscriptConfig struct {
	GraphQLURL string        `yaml:"graphql_url" json:"graphql_url"`
	APIToken   string        `yaml:"api_token" json:"api_token"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" default:"20s"`
	// LargeTranscriptThreshold is the rune count above which indexing is
	// dispatched as a background job instead of running inline.
	LargeTranscriptThreshold int `yaml:"large_transcript_threshold" json:"large_transcript_threshold" default:"20000"`
}

// ObjectStorageConfig selects and configures the archival backend.
type ObjectStorageConfig struct {
	Backend   string `yaml:"backend" json:"backend"` // "local", "minio", "cos", "dummy"
	Bucket    string `yaml:"bucket" json:"bucket"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	LocalPath string `yaml:"local_path" json:"local_path"`
}

// EntityGraphConfig configures the client-linking graph mirror.
type EntityGraphConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	URI      string `yaml:"uri" json:"uri"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// KeywordIndexConfig configures the optional secondary retriever.
type KeywordIndexConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	URLs    []string `yaml:"urls" json:"urls"`
	Index   string   `yaml:"index" json:"index"`
}

// RetrievalConfig holds defaults for the cascade policy; Setting-table rows
// with the matching key override these per request.
type RetrievalConfig struct {
	DefaultNumChunks int    `yaml:"default_num_chunks" json:"default_num_chunks" default:"20"`
	SystemPrompt     string `yaml:"system_prompt" json:"system_prompt"`
	ApologyText      string `yaml:"apology_text" json:"apology_text"`
}

// LoadConfig reads config.yaml (or config/config.yaml) and resolves
// ${ENV_VAR} references against the process environment before unmarshalling.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.consultant-copilot")
	viper.AddConfigPath("/etc/consultant-copilot/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	configFileContent, err := os.ReadFile(viper.ConfigFileUsed())
	if err != nil {
		return nil, fmt.Errorf("error reading config file content: %w", err)
	}

	re := regexp.MustCompile(`\${([^}]+)}`)
	result := re.ReplaceAllStringFunc(string(configFileContent), func(match string) string {
		envVar := match[2 : len(match)-1]
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})

	if err := viper.ReadConfig(strings.NewReader(result)); err != nil {
		return nil, fmt.Errorf("error applying resolved config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	fmt.Printf("Using configuration file: %s\n", viper.ConfigFileUsed())
	return &cfg, nil
}
