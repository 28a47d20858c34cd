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

// Package search provides semantic retrieval over indexed chunks.
//
// The Retriever embeds a query, runs a nearest-neighbor search against
// the chunk store, and returns results above a similarity threshold,
// capped at top-K. Retrieval is best-effort by contract: failures
// degrade to an empty result set so the analysis pipeline can proceed
// without retrieved context.
package search
