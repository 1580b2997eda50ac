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


// Package ingest moves articles from the crawler into durable storage and
// the vector index.
//
// Two stages make up the flow:
//
//   - Pipeline persists crawled articles into the relational store,
//     normalizing and chunking the content of each article that has not been
//     seen before. Ingestion is idempotent per URL.
//   - Indexer loads unindexed chunks in batches, generates embeddings over a
//     bounded worker pool with retry, and upserts the resulting passage
//     records into the vector index.
//
// The split means crawling, chunking, and embedding can run at different
// cadences: a crawl that fails midway leaves ingested-but-unindexed chunks
// that the next Indexer run picks up.
package ingest
