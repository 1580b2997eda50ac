package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestInsertArticleIdempotent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "newsqa.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	id1, wasNew, err := store.InsertArticle(ctx, "Title", "https://example.com/a", "2025-06-01", "content")
	if err != nil {
		t.Fatalf("Failed to insert article: %v", err)
	}
	if !wasNew {
		t.Fatal("Expected wasNew=true on first insert")
	}
	if id1 == 0 {
		t.Fatal("Expected non-zero id")
	}

	id2, wasNew, err := store.InsertArticle(ctx, "Title", "https://example.com/a", "2025-06-01", "content")
	if err != nil {
		t.Fatalf("Failed to re-insert article: %v", err)
	}
	if wasNew {
		t.Fatal("Expected wasNew=false on duplicate insert")
	}
	if id2 != id1 {
		t.Fatalf("Expected same id for duplicate URL, got %d and %d", id1, id2)
	}

	count, err := store.CountArticles(ctx)
	if err != nil {
		t.Fatalf("Failed to count articles: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected exactly 1 article, got %d", count)
	}
}

func TestInsertChunksOrdering(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	id, _, err := store.InsertArticle(ctx, "T", "https://example.com/b", "", "content")
	if err != nil {
		t.Fatalf("Failed to insert article: %v", err)
	}

	texts := []string{"first passage", "second passage", "third passage"}
	if err := store.InsertChunks(ctx, id, texts); err != nil {
		t.Fatalf("Failed to insert chunks: %v", err)
	}

	chunks, err := store.Chunks(ctx, id)
	if err != nil {
		t.Fatalf("Failed to read chunks: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("Expected chunk index %d, got %d", i, chunk.Index)
		}
		if chunk.Text != texts[i] {
			t.Fatalf("Expected chunk text %q, got %q", texts[i], chunk.Text)
		}
	}

	count, err := store.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 chunks, got %d", count)
	}
}

func TestInsertChunksAtomic(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	id, _, err := store.InsertArticle(ctx, "T", "https://example.com/c", "", "content")
	if err != nil {
		t.Fatalf("Failed to insert article: %v", err)
	}

	// An empty chunk text fails validation mid-batch; nothing may survive.
	err = store.InsertChunks(ctx, id, []string{"ok", "", "also ok"})
	if err == nil {
		t.Fatal("Expected batch insert with invalid chunk to fail")
	}

	count, err := store.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected rollback to leave 0 chunks, got %d", count)
	}
}

func TestUnindexedChunks(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	id, _, err := store.InsertArticle(ctx, "Example", "https://example.com/d", "2025-06-02", "content")
	if err != nil {
		t.Fatalf("Failed to insert article: %v", err)
	}
	if err := store.InsertChunks(ctx, id, []string{"one", "two"}); err != nil {
		t.Fatalf("Failed to insert chunks: %v", err)
	}

	records, err := store.UnindexedChunks(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to load unindexed chunks: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 unindexed chunks, got %d", len(records))
	}
	if records[0].Title != "Example" || records[0].URL != "https://example.com/d" {
		t.Fatalf("Expected article metadata on passage record, got %+v", records[0])
	}
	if records[0].Id == records[1].Id {
		t.Fatal("Expected distinct passage IDs per chunk")
	}

	if err := store.MarkIndexed(ctx, records[0].ChunkID); err != nil {
		t.Fatalf("Failed to mark chunk indexed: %v", err)
	}

	remaining, err := store.UnindexedChunks(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to reload unindexed chunks: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("Expected 1 unindexed chunk after marking, got %d", len(remaining))
	}
	if remaining[0].ChunkID != records[1].ChunkID {
		t.Fatalf("Expected the unmarked chunk to remain, got %d", remaining[0].ChunkID)
	}
}
