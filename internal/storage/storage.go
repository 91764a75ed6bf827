package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store remembers which article URLs have already been announced to
// downstream publishers, so repeated crawl cycles do not re-emit events for
// articles that stay on the listing pages.
type Store interface {
	Close() error
	Published(key string) (bool, error)
	MarkPublished(key string) error
}

// Options controls retention for concrete store implementations. Entries
// older than ArticleTTL are dropped; listing pages rotate well within that
// window.
type Options struct {
	ArticleTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultArticleTTL      = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ArticleTTL <= 0 {
		opts.ArticleTTL = defaultArticleTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore treats every article as new. Used when no storage backend is
// configured, which keeps the feed-only deployment free of local state.
type noopStore struct{}

func (noopStore) Close() error                   { return nil }
func (noopStore) Published(string) (bool, error) { return false, nil }
func (noopStore) MarkPublished(string) error     { return nil }
