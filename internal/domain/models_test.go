package domain

import "testing"

func TestDedupeByURLKeepsFirstOccurrence(t *testing.T) {
	in := []Article{
		{Title: "First", URL: "https://www.jota.info/a"},
		{Title: "Second", URL: "https://www.jota.info/b"},
		{Title: "First Duplicate", URL: "https://www.jota.info/a"},
	}

	out := DedupeByURL(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(out))
	}
	if out[0].Title != "First" || out[1].Title != "Second" {
		t.Fatalf("unexpected order or winner: %#v", out)
	}
}

func TestDedupeByURLIsIdempotent(t *testing.T) {
	in := []Article{
		{Title: "A", URL: "https://www.jota.info/a"},
		{Title: "B", URL: "https://www.jota.info/b"},
	}

	once := DedupeByURL(in)
	twice := DedupeByURL(once)
	if len(once) != len(twice) {
		t.Fatalf("dedup not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].URL != twice[i].URL {
			t.Fatalf("order changed at %d: %s vs %s", i, once[i].URL, twice[i].URL)
		}
	}
}

func TestDedupeByURLEmpty(t *testing.T) {
	if out := DedupeByURL(nil); out != nil {
		t.Fatalf("expected nil for empty input, got %#v", out)
	}
}

func TestArticleKeyIsStable(t *testing.T) {
	a := Article{Title: "T", URL: "https://www.jota.info/x"}
	b := Article{Title: "Other title, same url", URL: "https://www.jota.info/x"}
	if a.Key() != b.Key() {
		t.Fatalf("keys for identical URLs differ")
	}
	if a.Key() == (Article{URL: "https://www.jota.info/y"}).Key() {
		t.Fatalf("keys for different URLs collide")
	}
}
