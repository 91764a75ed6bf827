package publishers

import (
	"time"

	"github.com/jota-rss/jota-feed-harvester/internal/domain"
)

// Event is the payload announced downstream for each newly scraped article.
type Event struct {
	Tag         string         `json:"tag"`
	Article     domain.Article `json:"article"`
	CollectedAt time.Time      `json:"collected_at"`
}

// NewEvent constructs an Event for the given tag + article.
func NewEvent(tag string, article domain.Article) Event {
	return Event{
		Tag:         tag,
		Article:     article,
		CollectedAt: time.Now().UTC(),
	}
}
