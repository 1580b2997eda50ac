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


// Package search provides semantic retrieval of news evidence passages.
//
// The Searcher type implements a multi-stage retrieval algorithm:
//   - Semantic search using vector embeddings
//   - Verbatim keyword boosting with stop-word filtering
//   - Greedy diversity re-ranking to reduce near-duplicate passages
//
// Results are returned as core.Evidence, ready for prompt assembly. Searcher
// also satisfies the answer pipeline's retriever contract directly.
package search
