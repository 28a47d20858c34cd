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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidBriefing indicates a Briefing failed validation.
	ErrInvalidBriefing = errors.New("invalid briefing")

	// ErrEmptyText indicates the chunk Text field is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrEmptySourceName indicates the chunk SourceName field is empty.
	ErrEmptySourceName = errors.New("chunk source name cannot be empty")

	// ErrMissingBriefingID indicates a chunk has no owning briefing.
	ErrMissingBriefingID = errors.New("chunk briefing id cannot be empty")

	// ErrInvalidSection indicates an invalid SectionType value.
	ErrInvalidSection = errors.New("invalid section type")

	// ErrEmptySeries indicates the briefing Series field is empty.
	ErrEmptySeries = errors.New("briefing series cannot be empty")
)
