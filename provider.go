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


package warroom

import (
	"github.com/poiesic/warroom/ai"
	"github.com/poiesic/warroom/ai/anthropic"
	"github.com/poiesic/warroom/ai/openai"
)

// provider pairs the OpenAI embedding client with the Anthropic
// generation client behind the ai.Provider interface.
type provider struct {
	embedder  ai.Embedder
	generator ai.Generator
}

// NewProvider builds the production AI provider from a validated config.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return nil, err
	}
	generator, err := anthropic.NewGenerator(config)
	if err != nil {
		return nil, err
	}

	return &provider{embedder: embedder, generator: generator}, nil
}

func (p *provider) Embedder() ai.Embedder { return p.embedder }

func (p *provider) Generator() ai.Generator { return p.generator }

// Close is a no-op: both clients are plain HTTP callers with no
// resources to release.
func (p *provider) Close() error { return nil }
