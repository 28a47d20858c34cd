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


package analysis

import "errors"

var (
	// ErrBriefingRepositoryRequired is returned when no briefing repository is provided.
	ErrBriefingRepositoryRequired = errors.New("briefing repository is required")

	// ErrAIProviderRequired is returned when no AI provider is provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrRetrieverRequired is returned when no retriever is provided.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrIndexerRequired is returned when no indexer is provided.
	ErrIndexerRequired = errors.New("indexer is required")

	// ErrNoDocuments is returned when a run is started with an empty document set.
	ErrNoDocuments = errors.New("no documents provided")

	// ErrNoSeries is returned when a run is started without a series name.
	ErrNoSeries = errors.New("no series provided")

	// ErrMaterialityFailed is returned when the materiality phase fails
	// after its structured-output retry. The run is aborted.
	ErrMaterialityFailed = errors.New("materiality analysis failed")
)
