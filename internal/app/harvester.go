package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jota-rss/jota-feed-harvester/internal/config"
	"github.com/jota-rss/jota-feed-harvester/internal/domain"
	"github.com/jota-rss/jota-feed-harvester/internal/feed"
	"github.com/jota-rss/jota-feed-harvester/internal/logger"
	"github.com/jota-rss/jota-feed-harvester/internal/scraper"
	"github.com/jota-rss/jota-feed-harvester/internal/storage"
	"github.com/jota-rss/jota-feed-harvester/internal/tags"
	"github.com/jota-rss/jota-feed-harvester/pkg/publishers"
)

// Harvester wires together the scraper, feed generator, publishers and
// storage, and executes crawl cycles.
type Harvester struct {
	cfg           *config.Config
	tags          []string
	scrapeService *scraper.Service
	feedGen       *feed.Generator
	fanout        *publishers.Fanout
	store         storage.Store
	crawlInterval time.Duration
	log           logger.Logger
}

// NewHarvester builds a harvester runtime from config.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	tagList, err := resolveTags(cfg)
	if err != nil {
		return nil, err
	}
	log.InfoObj("tags resolved", "tags", tagList)

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if fanout.Size() > 0 {
		log.InfoObj("publishers loaded", "publisher_ids", fanout.IDs())
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ArticleTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	scrapeService := scraper.NewService(nil, scraper.Options{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		MaxPages:  cfg.MaxPages,
	}, log)

	return &Harvester{
		cfg:           cfg,
		tags:          tagList,
		scrapeService: scrapeService,
		feedGen:       feed.NewGenerator(cfg.BaseURL, cfg.OutputDir, log),
		fanout:        fanout,
		store:         store,
		crawlInterval: cfg.CrawlInterval,
		log:           log,
	}, nil
}

// resolveTags picks the tag list from the first configured source: explicit
// list, tags file, then environment variable.
func resolveTags(cfg *config.Config) ([]string, error) {
	if list := tags.Normalize(cfg.Tags); len(list) > 0 {
		return list, nil
	}
	if cfg.TagsFile != "" {
		list, err := tags.FromFile(cfg.TagsFile)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			return list, nil
		}
	}
	if cfg.TagsEnvVar != "" {
		if list := tags.FromEnv(cfg.TagsEnvVar); len(list) > 0 {
			return list, nil
		}
	}
	return nil, fmt.Errorf("no tags configured (set tags, tags_file or tags_env_var)")
}

// buildFanout instantiates the enabled publishers, if any are configured.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	return publishers.NewFanout(pubs), nil
}

// Run executes crawl cycles until the context is cancelled. A zero crawl
// interval runs a single pass and returns.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.scrapeService == nil {
		return fmt.Errorf("harvester is not initialized")
	}

	h.log.InfoObj("harvester starting", "harvester_state", map[string]any{
		"tags_count":       len(h.tags),
		"publishers_count": h.fanout.Size(),
		"output_dir":       h.cfg.OutputDir,
		"crawl_interval":   h.crawlInterval.String(),
	})

	if err := h.RunOnce(ctx); err != nil {
		return fmt.Errorf("initial crawl: %w", err)
	}
	if h.crawlInterval <= 0 {
		return nil
	}

	ticker := time.NewTicker(h.crawlInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := h.RunOnce(ctx); err != nil {
				h.log.ErrorObj("scheduled crawl failed", "error", err.Error())
			}
		}
	}
}

// RunOnce scrapes every tag, writes the per-tag and combined feeds, and
// announces newly seen articles downstream.
func (h *Harvester) RunOnce(ctx context.Context) error {
	start := time.Now()
	h.log.InfoObj("crawl started", "crawl_meta", map[string]any{
		"tags_count": len(h.tags),
		"started_at": start.UTC(),
	})

	byTag := h.scrapeService.ScrapeAll(ctx, h.tags)

	total := 0
	for _, tag := range h.tags {
		articles := byTag[tag]
		if len(articles) == 0 {
			h.log.WarnObj("no articles for tag; feed not written", "tag", tag)
			continue
		}
		total += len(articles)

		if _, err := h.feedGen.WriteTagFeed(tag, articles); err != nil {
			return fmt.Errorf("write feed for tag %q: %w", tag, err)
		}
	}

	if total > 0 {
		if _, err := h.feedGen.WriteCombinedFeed(h.tags, byTag); err != nil {
			return fmt.Errorf("write combined feed: %w", err)
		}
	}

	if h.fanout.Size() > 0 {
		h.announceNew(ctx, byTag)
	}

	h.log.InfoObj("crawl completed", "crawl_meta", map[string]any{
		"tags_count":     len(h.tags),
		"articles_total": total,
		"elapsed_ms":     time.Since(start).Milliseconds(),
	})
	return nil
}

// announceNew publishes an event per article not yet recorded in storage.
// Publisher failures are logged and do not abort the cycle; an article is
// only marked published after at least one publisher accepted it.
func (h *Harvester) announceNew(ctx context.Context, byTag map[string][]domain.Article) {
	for _, tag := range h.tags {
		for _, art := range byTag[tag] {
			key := art.Key()
			seen, err := h.store.Published(key)
			if err != nil {
				h.log.ErrorObj("storage lookup failed", "error", err.Error())
				continue
			}
			if seen {
				continue
			}

			delivered, err := h.fanout.Publish(ctx, publishers.NewEvent(tag, art))
			if err != nil {
				h.log.ErrorObj("publish failed for article", "publish_error", map[string]any{
					"tag":   tag,
					"url":   art.URL,
					"error": err.Error(),
				})
			}
			if delivered == 0 {
				continue
			}
			if err := h.store.MarkPublished(key); err != nil {
				h.log.ErrorObj("storage mark failed", "error", err.Error())
			}
		}
	}
}

// Close releases the storage backend.
func (h *Harvester) Close() error {
	if h == nil || h.store == nil {
		return nil
	}
	return h.store.Close()
}
