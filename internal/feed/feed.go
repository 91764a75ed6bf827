package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/jota-rss/jota-feed-harvester/internal/domain"
	"github.com/jota-rss/jota-feed-harvester/internal/logger"
)

const (
	feedAuthorName  = "JOTA Info"
	feedAuthorEmail = "contato@jota.info"
	feedLanguage    = "pt-BR"

	// CombinedFileName is where the cross-tag feed lands inside the output dir.
	CombinedFileName = "feed.xml"
)

// Generator turns scraped article lists into RSS documents on disk.
type Generator struct {
	baseURL   string
	outputDir string
	now       func() time.Time
	log       logger.Logger
}

// NewGenerator builds a feed generator rooted at outputDir.
func NewGenerator(baseURL, outputDir string, log logger.Logger) *Generator {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Generator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		outputDir: outputDir,
		now:       time.Now,
		log:       log,
	}
}

// WriteTagFeed serializes one tag's ordered article list to
// {outputDir}/{tag}.xml and returns the written path.
func (g *Generator) WriteTagFeed(tag string, articles []domain.Article) (string, error) {
	feedURL := g.baseURL + "/tudo-sobre/" + tag

	f := &feeds.Feed{
		Id:          feedURL,
		Title:       "JOTA - " + strings.ToUpper(strings.ReplaceAll(tag, "-", " ")),
		Link:        &feeds.Link{Href: feedURL, Rel: "alternate"},
		Description: fmt.Sprintf("Últimas notícias sobre %s no JOTA", strings.ReplaceAll(tag, "-", " ")),
		Author:      &feeds.Author{Name: feedAuthorName, Email: feedAuthorEmail},
		Updated:     g.now().UTC(),
	}

	for _, art := range articles {
		f.Items = append(f.Items, &feeds.Item{
			Id:          art.URL,
			Title:       art.Title,
			Link:        &feeds.Link{Href: art.URL},
			Description: itemDescription(art),
		})
	}

	path := filepath.Join(g.outputDir, tag+".xml")
	if err := g.writeRSS(f, path); err != nil {
		return "", err
	}

	g.log.InfoObj("feed generated", "feed_meta", map[string]any{
		"path":     path,
		"articles": len(articles),
	})
	return path, nil
}

// WriteCombinedFeed aggregates every tag's articles into one document at
// {outputDir}/feed.xml, deduplicated by URL across tags in the given tag
// order (the first tag carrying a URL wins). Item titles get a [TAG] prefix.
func (g *Generator) WriteCombinedFeed(tags []string, byTag map[string][]domain.Article) (string, error) {
	f := &feeds.Feed{
		Id:          g.baseURL,
		Title:       "JOTA - Combined Feed",
		Link:        &feeds.Link{Href: g.baseURL, Rel: "alternate"},
		Description: "Últimas notícias de múltiplos temas no JOTA",
		Author:      &feeds.Author{Name: feedAuthorName, Email: feedAuthorEmail},
		Updated:     g.now().UTC(),
	}

	seen := make(map[string]struct{})
	count := 0
	for _, tag := range tags {
		for _, art := range byTag[tag] {
			if _, ok := seen[art.URL]; ok {
				continue
			}
			seen[art.URL] = struct{}{}
			count++

			f.Items = append(f.Items, &feeds.Item{
				Id:          art.URL,
				Title:       fmt.Sprintf("[%s] %s", strings.ToUpper(tag), art.Title),
				Link:        &feeds.Link{Href: art.URL},
				Description: itemDescription(art),
			})
		}
	}

	path := filepath.Join(g.outputDir, CombinedFileName)
	if err := g.writeRSS(f, path); err != nil {
		return "", err
	}

	g.log.InfoObj("combined feed generated", "feed_meta", map[string]any{
		"path":     path,
		"articles": count,
	})
	return path, nil
}

// writeRSS renders the feed as RSS 2.0 with the site language set.
func (g *Generator) writeRSS(f *feeds.Feed, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	rss := (&feeds.Rss{Feed: f}).RssFeed()
	rss.Language = feedLanguage

	xml, err := feeds.ToXML(rss)
	if err != nil {
		return fmt.Errorf("render rss: %w", err)
	}
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		return fmt.Errorf("write feed file: %w", err)
	}
	return nil
}

// itemDescription joins "[category]" and "Por author1, author2" with " - ",
// using whichever parts are non-empty and falling back to the bare title.
func itemDescription(art domain.Article) string {
	var parts []string
	if art.Category != "" {
		parts = append(parts, "["+art.Category+"]")
	}
	if len(art.Authors) > 0 {
		parts = append(parts, "Por "+strings.Join(art.Authors, ", "))
	}
	if len(parts) == 0 {
		return art.Title
	}
	return strings.Join(parts, " - ")
}
