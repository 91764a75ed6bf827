package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jota-rss/jota-feed-harvester/internal/domain"
)

// The listing pages embed their authoritative post list in a Next.js data
// island. When it is present it wins over the markup heuristics.
const nextDataScriptID = "__NEXT_DATA__"

// nextData mirrors the slice of the data island the scraper reads.
type nextData struct {
	Props struct {
		PageProps struct {
			Posts      []nextDataPost `json:"posts"`
			TotalPages *int           `json:"totalPages"`
		} `json:"pageProps"`
	} `json:"props"`
}

type nextDataPost struct {
	Title     string      `json:"title"`
	Permalink string      `json:"permalink"`
	Author    authorField `json:"author"`
	Category  *struct {
		Name string `json:"name"`
	} `json:"category"`
	Image *struct {
		URL string `json:"url"`
	} `json:"image"`
}

// authorField tolerates the island's author shapes: absent, null, a single
// object, or a list of objects. Entries without a name are dropped.
type authorField struct {
	Names []string
}

func (f *authorField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	type author struct {
		Name string `json:"name"`
	}

	switch data[0] {
	case '{':
		var single author
		if err := json.Unmarshal(data, &single); err == nil && single.Name != "" {
			f.Names = []string{single.Name}
		}
	case '[':
		var many []author
		if err := json.Unmarshal(data, &many); err == nil {
			for _, a := range many {
				if a.Name != "" {
					f.Names = append(f.Names, a.Name)
				}
			}
		}
	}

	// Any other shape (string, number) carries no usable author.
	return nil
}

// extractNextData locates and decodes the data island. A missing script block
// yields (nil, nil): that is the fallback signal, not an error. A present but
// malformed payload yields the decode error so the caller can log it and fall
// back all the same.
func extractNextData(html string) (*nextData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	script := doc.Find("script#" + nextDataScriptID).First()
	if script.Length() == 0 {
		return nil, nil
	}

	raw := strings.TrimSpace(script.Text())
	if raw == "" {
		return nil, nil
	}

	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", nextDataScriptID, err)
	}
	return &data, nil
}

// articlesFromNextData converts the island's post list into articles. Posts
// missing a title or permalink are skipped; relative permalinks are prefixed
// with the base origin.
func articlesFromNextData(data *nextData, baseURL string) []domain.Article {
	if data == nil {
		return nil
	}

	posts := data.Props.PageProps.Posts
	articles := make([]domain.Article, 0, len(posts))
	for _, post := range posts {
		if post.Title == "" || post.Permalink == "" {
			continue
		}

		url := post.Permalink
		if !strings.HasPrefix(url, "http") {
			url = baseURL + url
		}

		art := domain.Article{
			Title:   post.Title,
			URL:     url,
			Authors: post.Author.Names,
		}
		if post.Category != nil {
			art.Category = post.Category.Name
		}
		if post.Image != nil {
			art.ImageURL = post.Image.URL
		}
		articles = append(articles, art)
	}
	return articles
}

// totalPagesFromNextData reads the pagination count, defaulting to 1 only
// when the field is absent.
func totalPagesFromNextData(data *nextData) int {
	if data == nil || data.Props.PageProps.TotalPages == nil {
		return 1
	}
	return *data.Props.PageProps.TotalPages
}
