package summarizer

import "testing"

func TestSummaryCacheGetSet(t *testing.T) {
	cache := newSummaryCache(2)
	if cache == nil {
		t.Fatalf("expected cache instance")
	}

	cache.set("key", "value")

	summary, ok := cache.get("key")
	if !ok {
		t.Fatalf("expected cached summary to be present")
	}

	if summary != "value" {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestSummaryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newSummaryCache(2)

	cache.set("a", "summary-a")
	cache.set("b", "summary-b")

	if _, ok := cache.get("a"); !ok {
		t.Fatalf("expected entry a to exist before eviction check")
	}

	cache.set("c", "summary-c")

	if _, ok := cache.get("a"); !ok {
		t.Fatalf("expected entry a to remain after evicting least recently used")
	}

	if _, ok := cache.get("b"); ok {
		t.Fatalf("expected entry b to be evicted")
	}

	if len(cache.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(cache.entries))
	}
}

func TestSummaryCacheIgnoresEmptyValues(t *testing.T) {
	cache := newSummaryCache(2)
	cache.set("", "value")
	cache.set("key", "")

	if len(cache.entries) != 0 {
		t.Fatalf("expected empty keys and summaries to be ignored")
	}
}

func TestSummaryCacheDisabled(t *testing.T) {
	cache := newSummaryCache(0)
	if cache != nil {
		t.Fatalf("expected nil cache for zero size")
	}

	cache.set("key", "value")
	if _, ok := cache.get("key"); ok {
		t.Fatalf("expected nil cache to miss")
	}
}

func TestSummaryCacheKey(t *testing.T) {
	if summaryCacheKey("") != "" {
		t.Fatalf("expected empty key for empty text")
	}

	if summaryCacheKey("berita") != summaryCacheKey("berita") {
		t.Fatalf("expected stable key")
	}

	if summaryCacheKey("berita a") == summaryCacheKey("berita b") {
		t.Fatalf("expected different keys for different texts")
	}
}
