package scraper

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jota-rss/jota-feed-harvester/internal/domain"
	"github.com/jota-rss/jota-feed-harvester/internal/logger"
	"github.com/jota-rss/jota-feed-harvester/pkg/httpclient"
)

const (
	// DefaultBaseURL is the site origin all listing URLs hang off.
	DefaultBaseURL = "https://www.jota.info"
	// DefaultUserAgent identifies the bot on every request.
	DefaultUserAgent = "JotaRSSBot/1.0 (+https://github.com/jota-rss-feed)"
	// DefaultMaxPages caps how many listing pages a single tag scrape fetches.
	DefaultMaxPages = 3

	tagPathPrefix = "/tudo-sobre/"
)

// Options tunes a scrape Service. Zero values fall back to the defaults above.
type Options struct {
	BaseURL   string
	UserAgent string
	MaxPages  int
}

// Service scrapes tag listing pages into deduplicated article lists. One
// instance is shared by all concurrent tag scrapes; the only shared state is
// the read-only HTTP client.
type Service struct {
	client    httpclient.Client
	baseURL   string
	userAgent string
	maxPages  int
	log       logger.Logger
}

// NewService builds a scrape service. A nil client gets the detached resty
// client with the fixed request timeout; a nil logger gets a nop.
func NewService(client httpclient.Client, opts Options, log logger.Logger) *Service {
	if client == nil {
		client = httpclient.NewDetachedRestyClient(requestTimeout)
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	return &Service{
		client:    client,
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		maxPages:  opts.MaxPages,
		log:       log,
	}
}

// TagURL builds the listing URL for a tag.
func (s *Service) TagURL(tag string) string {
	return s.baseURL + tagPathPrefix + tag
}

// ScrapeTag fetches up to maxPages listing pages for one tag and returns its
// deduplicated articles in page order. Only a first-page fetch failure is
// terminal for the tag; every later failure degrades to an empty page.
func (s *Service) ScrapeTag(ctx context.Context, tag string) []domain.Article {
	listURL := s.TagURL(tag)
	s.log.InfoObj("scraping tag", "tag", tag)

	firstPage, err := s.fetchPage(ctx, listURL)
	if err != nil {
		s.log.WarnObj("first page fetch failed; skipping tag", "tag", tag)
		return nil
	}

	articles, totalPages := s.extractPage(tag, listURL, firstPage)

	pagesToFetch := totalPages
	if pagesToFetch > s.maxPages {
		pagesToFetch = s.maxPages
	}
	s.log.InfoObj("tag pagination discovered", "pagination", map[string]any{
		"tag":         tag,
		"total_pages": totalPages,
		"will_fetch":  pagesToFetch,
	})

	if pagesToFetch > 1 {
		articles = append(articles, s.scrapeRemainingPages(ctx, tag, listURL, pagesToFetch)...)
	}

	unique := domain.DedupeByURL(articles)
	s.log.InfoObj("tag scrape completed", "tag_result", map[string]any{
		"tag":      tag,
		"articles": len(unique),
	})
	return unique
}

// scrapeRemainingPages fetches pages 2..pagesToFetch concurrently, extracting
// each independently. Results keep ascending page order so that duplicate
// resolution stays deterministic; a failed page contributes nothing without
// aborting its siblings.
func (s *Service) scrapeRemainingPages(ctx context.Context, tag, listURL string, pagesToFetch int) []domain.Article {
	results := make([][]domain.Article, pagesToFetch-1)

	g, gctx := errgroup.WithContext(ctx)
	for page := 2; page <= pagesToFetch; page++ {
		idx := page - 2
		pageURL := fmt.Sprintf("%s?page=%d", listURL, page)
		g.Go(func() error {
			content, err := s.fetchPage(gctx, pageURL)
			if err != nil {
				return nil // already logged; this page yields nothing
			}
			pageArticles, _ := s.extractPage(tag, listURL, content)
			results[idx] = pageArticles
			return nil
		})
	}
	_ = g.Wait() // workers never fail; Wait only joins them

	var out []domain.Article
	for _, pageArticles := range results {
		out = append(out, pageArticles...)
	}
	return out
}

// extractPage applies the structured-then-fallback strategy to one page and
// returns its articles plus the page-count estimate.
func (s *Service) extractPage(tag, listURL, content string) ([]domain.Article, int) {
	data, err := extractNextData(content)
	if err != nil {
		s.log.ErrorObj("structured payload parse failed", "parse_error", map[string]any{
			"tag":   tag,
			"error": err.Error(),
		})
	}
	if data != nil {
		return articlesFromNextData(data, s.baseURL), totalPagesFromNextData(data)
	}

	s.log.DebugObj("no structured payload; falling back to html extraction", "tag", tag)
	return articlesFromHTML(content, listURL), totalPagesFromHTML(content)
}

// ScrapeAll runs ScrapeTag concurrently for every requested tag over the
// shared client. The result map is keyed by tag; callers iterate their own
// tag slice to preserve request order.
func (s *Service) ScrapeAll(ctx context.Context, tags []string) map[string][]domain.Article {
	results := make([][]domain.Article, len(tags))

	g, gctx := errgroup.WithContext(ctx)
	for i, tag := range tags {
		g.Go(func() error {
			results[i] = s.ScrapeTag(gctx, tag)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string][]domain.Article, len(tags))
	for i, tag := range tags {
		out[tag] = results[i]
	}
	return out
}
