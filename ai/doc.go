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


// Package ai provides abstractions for the AI services used in Warroom.
//
// This package defines interfaces for text embedding and analysis generation.
// It follows the dependency inversion principle, allowing the pipeline and
// retrieval logic to depend on abstractions rather than concrete
// implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces analysis completions from a hosted model
//   - Provider: Aggregates AI services for convenient initialization
//
// GenerateStructured layers typed JSON decoding on top of any Generator,
// with fence stripping and a single corrective retry on parse failure.
//
// # Implementation Packages
//
//   - ai/openai: embedding implementation for OpenAI-compatible APIs
//   - ai/anthropic: generation implementation for the Anthropic API
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewEmbedder, anthropic.NewGenerator) return
// INTERFACE types to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder, mock.NewMockGenerator) return CONCRETE types to
// enable test assertions and behavior injection via function fields.
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithEmbeddingKey(os.Getenv("OPENAI_API_KEY")),
//	    ai.WithGenerationKey(os.Getenv("ANTHROPIC_API_KEY")),
//	)
//	provider, err := warroom.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "coal royalties rose 12%")
//	text, err := provider.Generator().Generate(ctx, system, user)
package ai
