// Package config loads application configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by StorageConfig.Backend.
const (
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Config is the root application configuration. It is loaded from a
// YAML file, then overridden by environment variables, so deployments
// can keep a checked-in config file and inject secrets at runtime.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig selects and configures the store backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // "badger" | "postgres"

	// Path is the badger data directory. Ignored for postgres.
	Path string `yaml:"path,omitempty"`

	// DatabaseURL is the postgres connection string. Usually supplied
	// via the DATABASE_URL environment variable rather than the file.
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// AIConfig configures the embedding and generation services. API keys
// are never read from the file; they come from OPENAI_API_KEY and
// ANTHROPIC_API_KEY.
type AIConfig struct {
	EmbeddingHost       string `yaml:"embedding_host"`
	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
	GenerationModel     string `yaml:"generation_model"`

	EmbeddingKey  string `yaml:"-"`
	GenerationKey string `yaml:"-"`
}

// PipelineConfig configures chunking, retrieval, and the company
// profile the analysis prompts speak for.
type PipelineConfig struct {
	Series       string  `yaml:"series"`
	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap"`
	TopK         int     `yaml:"top_k"`
	Threshold    float64 `yaml:"threshold"`

	Company     string `yaml:"company"`
	Positioning string `yaml:"positioning"`
	Sector      string `yaml:"sector"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Storage: StorageConfig{
			Backend: BackendBadger,
			Path:    "./data",
		},
		AI: AIConfig{
			EmbeddingHost:       "https://api.openai.com/v1",
			EmbeddingModel:      "text-embedding-3-small",
			EmbeddingDimensions: 1536,
			GenerationModel:     "claude-sonnet-4-20250514",
		},
		Pipeline: PipelineConfig{
			Series:       "default",
			ChunkSize:    1500,
			ChunkOverlap: 200,
			TopK:         10,
			Threshold:    0.5,
		},
	}
}

// Load reads the config file at path, fills in defaults for anything
// unset, and applies environment overrides. A missing file is not an
// error: defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyDefaults(cfg)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = def.Storage.Backend
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = def.Storage.Path
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = def.AI.EmbeddingHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = def.AI.EmbeddingModel
	}
	if cfg.AI.EmbeddingDimensions == 0 {
		cfg.AI.EmbeddingDimensions = def.AI.EmbeddingDimensions
	}
	if cfg.AI.GenerationModel == "" {
		cfg.AI.GenerationModel = def.AI.GenerationModel
	}
	if cfg.Pipeline.Series == "" {
		cfg.Pipeline.Series = def.Pipeline.Series
	}
	if cfg.Pipeline.ChunkSize == 0 {
		cfg.Pipeline.ChunkSize = def.Pipeline.ChunkSize
	}
	if cfg.Pipeline.ChunkOverlap == 0 {
		cfg.Pipeline.ChunkOverlap = def.Pipeline.ChunkOverlap
	}
	if cfg.Pipeline.TopK == 0 {
		cfg.Pipeline.TopK = def.Pipeline.TopK
	}
	if cfg.Pipeline.Threshold == 0 {
		cfg.Pipeline.Threshold = def.Pipeline.Threshold
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WARROOM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WARROOM_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("WARROOM_DATA_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("OPENAI_HOST"); v != "" {
		cfg.AI.EmbeddingHost = v
	}
	cfg.AI.EmbeddingKey = os.Getenv("OPENAI_API_KEY")
	cfg.AI.GenerationKey = os.Getenv("ANTHROPIC_API_KEY")
}

// Validate checks cross-field constraints that defaults cannot fix.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendBadger:
		if c.Storage.Path == "" {
			return errors.New("config: storage.path is required for the badger backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}

	if c.Pipeline.Threshold < 0 || c.Pipeline.Threshold > 1 {
		return errors.New("config: pipeline.threshold must be between 0 and 1")
	}
	if c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return errors.New("config: pipeline.chunk_overlap must be smaller than chunk_size")
	}
	return nil
}
