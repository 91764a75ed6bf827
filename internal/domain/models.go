package domain

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
)

// Domain contains core models shared across the scrape and publish paths.

// Article is one scraped listing entry. Title and URL are always non-empty;
// both extractors drop candidates that would violate that. An empty ImageURL
// means no image was discovered.
type Article struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Authors  []string `json:"authors,omitempty"`
	Category string   `json:"category"`
	ImageURL string   `json:"image_url,omitempty"`
}

// Key returns a stable identifier derived from the article URL.
func (a Article) Key() string {
	sum := sha1.Sum([]byte(a.URL))
	return hex.EncodeToString(sum[:])
}

// DedupeByURL collapses articles sharing a URL, keeping the first occurrence
// and preserving order. Running it on an already-deduplicated slice returns
// the same content.
func DedupeByURL(articles []Article) []Article {
	if len(articles) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))
	for _, art := range articles {
		if _, ok := seen[art.URL]; ok {
			continue
		}
		seen[art.URL] = struct{}{}
		out = append(out, art)
	}
	return out
}
