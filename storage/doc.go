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


// Package storage provides the storage abstraction layer for newsqa.
//
// Two independent stores back the pipeline:
//
//   - ArticleStore: the relational, deduplicated corpus of articles and
//     their chunks (implemented by storage/sqlite)
//   - VectorIndex: embedding vectors for indexed passages with similarity
//     search (implemented by storage/badger)
//
// # Constructor Return Type Pattern
//
// Public constructors in the implementation packages return interface types
// to enforce abstraction and allow alternative backends:
//
//	store, err := sqlite.Open(path)    // returns storage.ArticleStore
//	index, err := badger.Open(path)    // returns storage.VectorIndex
//
// # Context Support
//
// All storage methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific timeout
// requirements.
package storage
