// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1", or a local OpenAI-compatible server.
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// EmbeddingKey is the API token for the embedding service.
	// Use "none" for local services that don't require authentication.
	EmbeddingKey string

	// EmbeddingDimensions is the fixed vector dimensionality of the
	// configured embedding model. All stored vectors in a deployment
	// must share this dimensionality; it is enforced here, by
	// configuration, not by runtime checks on every row.
	EmbeddingDimensions int

	// MaxEmbedChars is the per-input character budget. Inputs longer
	// than this are truncated before being sent; the embedding service
	// has a token ceiling and character truncation is a cheap
	// conservative proxy for it.
	MaxEmbedChars int

	// EmbedBatchSize is the number of inputs sent per embedding request.
	EmbedBatchSize int

	// GenerationKey is the API token for the generation service.
	GenerationKey string

	// GenerationModel is the model identifier for analysis generation.
	// Example: "claude-sonnet-4-20250514"
	GenerationModel string

	// MaxTokens bounds the length of each generated response.
	MaxTokens int

	// Temperature controls generation randomness. Analysis phases want
	// low values.
	Temperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingKey sets the embedding service API token.
func WithEmbeddingKey(key string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingKey = key
	}
}

// WithEmbeddingDimensions sets the expected vector dimensionality.
func WithEmbeddingDimensions(dims int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimensions = dims
	}
}

// WithEmbedBatchSize sets the number of inputs per embedding request.
func WithEmbedBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.EmbedBatchSize = size
	}
}

// WithGenerationKey sets the generation service API token.
func WithGenerationKey(key string) ConfigOption {
	return func(c *Config) {
		c.GenerationKey = key
	}
}

// WithGenerationModel sets the generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// DefaultConfig returns a Config with the deployment defaults: OpenAI
// embeddings at 1536 dimensions and Anthropic generation.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:       "https://api.openai.com/v1",
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingKey:        "none",
		EmbeddingDimensions: 1536,
		MaxEmbedChars:       8000,
		EmbedBatchSize:      20,
		GenerationModel:     "claude-sonnet-4-20250514",
		MaxTokens:           4096,
		Temperature:         0.2,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithEmbeddingKey(os.Getenv("OPENAI_API_KEY")),
//	    ai.WithGenerationKey(os.Getenv("ANTHROPIC_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the embedding host if missing, which is required
// by OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.MaxEmbedChars <= 0 {
		c.MaxEmbedChars = 8000
	}
	if c.EmbedBatchSize <= 0 {
		c.EmbedBatchSize = 20
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.EmbeddingDimensions <= 0 {
		return errors.New("ai config: EmbeddingDimensions must be positive")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return errors.New("ai config: Temperature must be between 0 and 1")
	}
	return nil
}
