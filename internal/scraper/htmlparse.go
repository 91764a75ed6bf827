package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jota-rss/jota-feed-harvester/internal/domain"
)

// Markup heuristics for listing pages without a data island. These encode the
// site's conventions, not general HTML semantics: <h2> marks an article
// title, author links live under /autor/, and category labels are short
// all-uppercase runs (including the accented uppercase the site uses).
const (
	authorPathMarker  = "/autor/"
	ancestorClimbMax  = 5
	paginationMaxPage = 100
)

var (
	// Kept byte-for-byte from the site's markup conventions; do not widen.
	categoryPattern = regexp.MustCompile(`^[A-ZÁÉÍÓÚÂÊÎÔÛÀÈÌÒÙÃÕ\s]+$`)
	numeralPattern  = regexp.MustCompile(`^\d+$`)
)

// articlesFromHTML recovers approximate article records from raw listing
// markup, one candidate per <h2> heading.
func articlesFromHTML(pageHTML, baseURL string) []domain.Article {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	var articles []domain.Article
	doc.Find("h2").Each(func(_ int, heading *goquery.Selection) {
		if art, ok := articleFromHeading(heading, baseURL); ok {
			articles = append(articles, art)
		}
	})
	return articles
}

// articleFromHeading builds one article candidate from a heading element.
// The first anchor inside the heading supplies title and link; contextual
// metadata is recovered from a containing block a fixed number of levels up.
func articleFromHeading(heading *goquery.Selection, baseURL string) (domain.Article, bool) {
	link := heading.Find("a").First()
	if link.Length() == 0 {
		return domain.Article{}, false
	}

	title := strings.TrimSpace(link.Text())
	articleURL := strings.TrimSpace(link.AttrOr("href", ""))
	if articleURL != "" && !strings.HasPrefix(articleURL, "http") {
		articleURL = resolveURL(baseURL, articleURL)
	}
	if title == "" || articleURL == "" {
		return domain.Article{}, false
	}

	art := domain.Article{Title: title, URL: articleURL}

	if container := containingBlock(heading); container != nil {
		art.Authors = authorsIn(container)
		art.ImageURL = firstImageIn(container)
		art.Category = categoryIn(container)
	}

	return art, true
}

// containingBlock climbs from the heading's parent a fixed number of extra
// levels. Returns nil when the tree is too shallow; the caller then emits the
// article without contextual metadata.
func containingBlock(heading *goquery.Selection) *goquery.Selection {
	parent := heading.Parent()
	for i := 0; i < ancestorClimbMax; i++ {
		if parent.Length() == 0 {
			return nil
		}
		parent = parent.Parent()
	}
	if parent.Length() == 0 {
		return nil
	}
	return parent
}

// authorsIn collects the text of every author-profile anchor in the block,
// trimmed and with any trailing comma stripped.
func authorsIn(block *goquery.Selection) []string {
	var authors []string
	block.Find("a").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if !strings.Contains(href, authorPathMarker) {
			return
		}
		name := strings.TrimRight(strings.TrimSpace(a.Text()), ",")
		authors = append(authors, name)
	})
	return authors
}

func firstImageIn(block *goquery.Selection) string {
	img := block.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	return img.AttrOr("src", "")
}

// categoryIn returns the first text node in the block that both matches the
// uppercase-run pattern and is longer than two characters once trimmed.
func categoryIn(block *goquery.Selection) string {
	for _, node := range block.Nodes {
		if found, ok := findCategoryText(node); ok {
			return found
		}
	}
	return ""
}

func findCategoryText(n *html.Node) (string, bool) {
	if n.Type == html.TextNode && categoryPattern.MatchString(n.Data) {
		trimmed := strings.TrimSpace(n.Data)
		if utf8.RuneCountInString(trimmed) > 2 {
			return trimmed, true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found, ok := findCategoryText(c); ok {
			return found, true
		}
	}
	return "", false
}

// totalPagesFromHTML guesses the page count from visible pagination numerals:
// the largest digits-only text node below 100, defaulting to 1. The cap keeps
// unrelated large numbers (years, counts, IDs) from being read as pages.
func totalPagesFromHTML(pageHTML string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return 1
	}

	maxPage := 1
	for _, root := range doc.Nodes {
		walkTextNodes(root, func(text string) {
			if !numeralPattern.MatchString(text) {
				return
			}
			num, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil {
				return
			}
			if num > maxPage && num < paginationMaxPage {
				maxPage = num
			}
		})
	}
	return maxPage
}

func walkTextNodes(n *html.Node, fn func(string)) {
	if n.Type == html.TextNode {
		fn(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkTextNodes(c, fn)
	}
}

// resolveURL resolves a relative href against the listing page URL.
func resolveURL(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
