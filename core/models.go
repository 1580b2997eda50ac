package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for passage records stored in the vector index.
// It is generated using content-based hashing so that re-indexing the same
// chunk always resolves to the same record.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PassageID generates the ID for a passage derived from an article URL and
// its chunk index. The URL is the dedup key, so the pair is globally unique.
func PassageID(url string, chunkIdx int) ID {
	return IDFromContent(url + "#" + strconv.Itoa(chunkIdx))
}

// Article represents one deduplicated ingested news item.
// Articles are created once per distinct URL and never mutated afterwards.
type Article struct {
	ID          int64
	Title       string
	URL         string // globally unique, the dedup key
	PublishedAt string // free-form date string as provided by the feed
	Content     string // full extracted text
}

// Chunk is a bounded-length passage of an Article's content, used as a
// retrieval unit. Chunks for one article are inserted in a single batch and
// Index ordering is significant.
type Chunk struct {
	ID        int64
	ArticleID int64
	Index     int // 0-based position within the owning article
	Text      string
}

// Evidence is the canonical record shape representing one retrieved passage
// plus its citation metadata. It is ephemeral: produced by the evidence
// package from arbitrary retrieval output and consumed by the prompt builder.
type Evidence struct {
	Title         string
	URL           string
	Source        string
	DatePublished string
	Score         *float64 // nil when the retriever supplied no score
	Text          string
}

// DefaultTitle is the placeholder used when an evidence item carries no title.
const DefaultTitle = "(no title)"

// PassageRecord is the persisted form of an indexed chunk: citation metadata
// denormalized from the owning article plus the embedding vector.
type PassageRecord struct {
	Id            ID
	ChunkID       int64
	ArticleID     int64
	Title         string
	URL           string
	Source        string
	DatePublished string
	Text          string
	Vector        []float32
}

// Evidence converts the stored passage into the canonical evidence shape,
// attaching the given similarity score.
func (p *PassageRecord) Evidence(score float32) Evidence {
	s := float64(score)
	return Evidence{
		Title:         p.Title,
		URL:           p.URL,
		Source:        p.Source,
		DatePublished: p.DatePublished,
		Score:         &s,
		Text:          p.Text,
	}
}

// SimilarityMatch represents a passage match from vector similarity search.
type SimilarityMatch struct {
	Record *PassageRecord
	Score  float32
}

// AnswerResult is the uniform per-model outcome of the answer pipeline.
// Every field is always populated, including on failure.
type AnswerResult struct {
	Model       string
	Answer      string
	Sources     []Evidence
	UsedTopK    int
	RetrievalMs int64
	GenMs       int64
	Err         string // empty on success
}

// Failed reports whether this result represents a per-model failure.
func (r *AnswerResult) Failed() bool {
	return r.Err != ""
}
