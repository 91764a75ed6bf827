package scraper

import (
	"context"
	"errors"
	"testing"
)

const tagBase = "https://www.jota.info/tudo-sobre/itcmd"

func TestScrapeTagFallbackWithPagination(t *testing.T) {
	page1 := `<html><body>
<h2><a href="/article-1">Article 1</a></h2>
<span>1</span><span>2</span><span>3</span>
</body></html>`
	page2 := `<html><body>
<h2><a href="/article-2">Article 2</a></h2>
</body></html>`

	client := &mockHTTPClient{
		t: t,
		responses: map[string]mockResponse{
			tagBase:             {body: []byte(page1)},
			tagBase + "?page=2": {body: []byte(page2)},
		},
	}
	svc := NewService(client, Options{MaxPages: 2}, nil)

	articles := svc.ScrapeTag(context.Background(), "itcmd")
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].URL != "https://www.jota.info/article-1" {
		t.Errorf("first article url = %q", articles[0].URL)
	}
	if articles[1].URL != "https://www.jota.info/article-2" {
		t.Errorf("second article url = %q", articles[1].URL)
	}
	// totalPages was 3 but the cap held at 2 pages.
	if got := client.callCount(); got != 2 {
		t.Fatalf("expected 2 fetches, got %d", got)
	}
}

func TestScrapeTagFirstPageFailureIsTerminal(t *testing.T) {
	client := &mockHTTPClient{
		t:    t,
		errs: map[string]error{tagBase: errors.New("connection failed")},
	}
	svc := NewService(client, Options{}, nil)

	articles := svc.ScrapeTag(context.Background(), "itcmd")
	if len(articles) != 0 {
		t.Fatalf("expected empty result, got %#v", articles)
	}
	if got := client.callCount(); got != 1 {
		t.Fatalf("no further pages may be attempted, got %d fetches", got)
	}
}

func TestScrapeTagRemovesDuplicates(t *testing.T) {
	page := `<html><body>
<h2><a href="/article-1">Article 1</a></h2>
<h2><a href="/article-1">Article 1 Duplicate</a></h2>
</body></html>`

	client := &mockHTTPClient{
		t:         t,
		responses: map[string]mockResponse{tagBase: {body: []byte(page)}},
	}
	svc := NewService(client, Options{MaxPages: 1}, nil)

	articles := svc.ScrapeTag(context.Background(), "itcmd")
	if len(articles) != 1 {
		t.Fatalf("expected 1 article after dedup, got %d", len(articles))
	}
	if articles[0].Title != "Article 1" {
		t.Fatalf("first occurrence must win, got %q", articles[0].Title)
	}
}

func TestScrapeTagStructuredPayloadWins(t *testing.T) {
	page := `<html>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"posts":[
  {"title":"Structured","permalink":"/structured-article","author":{"name":"A"}}
],"totalPages":1}}}
</script>
<body><h2><a href="/markup-article">Markup</a></h2></body>
</html>`

	client := &mockHTTPClient{
		t:         t,
		responses: map[string]mockResponse{tagBase: {body: []byte(page)}},
	}
	svc := NewService(client, Options{}, nil)

	articles := svc.ScrapeTag(context.Background(), "itcmd")
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	if articles[0].Title != "Structured" {
		t.Fatalf("structured extraction must win over markup, got %q", articles[0].Title)
	}
	if articles[0].URL != "https://www.jota.info/structured-article" {
		t.Fatalf("url = %q", articles[0].URL)
	}
}

func TestScrapeTagMalformedPayloadFallsBack(t *testing.T) {
	page := `<html>
<script id="__NEXT_DATA__">{broken</script>
<body><h2><a href="/markup-article">Markup</a></h2></body>
</html>`

	client := &mockHTTPClient{
		t:         t,
		responses: map[string]mockResponse{tagBase: {body: []byte(page)}},
	}
	svc := NewService(client, Options{}, nil)

	articles := svc.ScrapeTag(context.Background(), "itcmd")
	if len(articles) != 1 || articles[0].Title != "Markup" {
		t.Fatalf("expected fallback extraction, got %#v", articles)
	}
}

func TestScrapeTagMergePrefersEarlierPage(t *testing.T) {
	page1 := `<html><body>
<h2><a href="/shared">From Page One</a></h2>
<span>2</span>
</body></html>`
	page2 := `<html><body>
<h2><a href="/shared">From Page Two</a></h2>
<h2><a href="/only-on-two">Second Page Extra</a></h2>
</body></html>`

	client := &mockHTTPClient{
		t: t,
		responses: map[string]mockResponse{
			tagBase:             {body: []byte(page1)},
			tagBase + "?page=2": {body: []byte(page2)},
		},
	}
	svc := NewService(client, Options{}, nil)

	articles := svc.ScrapeTag(context.Background(), "itcmd")
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "From Page One" {
		t.Fatalf("duplicate must resolve to the earlier page, got %q", articles[0].Title)
	}
	if articles[1].URL != "https://www.jota.info/only-on-two" {
		t.Fatalf("second article url = %q", articles[1].URL)
	}
}

func TestScrapeTagLaterPageFailureDegrades(t *testing.T) {
	page1 := `<html><body>
<h2><a href="/a1">Article 1</a></h2>
<span>3</span>
</body></html>`
	page2 := `<html><body><h2><a href="/a2">Article 2</a></h2></body></html>`

	client := &mockHTTPClient{
		t: t,
		responses: map[string]mockResponse{
			tagBase:             {body: []byte(page1)},
			tagBase + "?page=2": {body: []byte(page2)},
		},
		errs: map[string]error{
			tagBase + "?page=3": errors.New("timeout"),
		},
	}
	svc := NewService(client, Options{}, nil)

	articles := svc.ScrapeTag(context.Background(), "itcmd")
	if len(articles) != 2 {
		t.Fatalf("failed page must contribute nothing without aborting siblings, got %d articles", len(articles))
	}
	if got := client.callCount(); got != 3 {
		t.Fatalf("expected 3 fetches, got %d", got)
	}
}

func TestScrapeAllCoversEveryTag(t *testing.T) {
	page := `<html><body><h2><a href="/art">Art</a></h2></body></html>`
	client := &mockHTTPClient{
		t: t,
		responses: map[string]mockResponse{
			"https://www.jota.info/tudo-sobre/itcmd": {body: []byte(page)},
			"https://www.jota.info/tudo-sobre/stf":   {body: []byte(page)},
		},
	}
	svc := NewService(client, Options{MaxPages: 1}, nil)

	results := svc.ScrapeAll(context.Background(), []string{"itcmd", "stf"})
	if len(results) != 2 {
		t.Fatalf("expected results for 2 tags, got %d", len(results))
	}
	for _, tag := range []string{"itcmd", "stf"} {
		arts, ok := results[tag]
		if !ok {
			t.Fatalf("missing result for tag %s", tag)
		}
		if len(arts) != 1 {
			t.Fatalf("tag %s: expected 1 article, got %d", tag, len(arts))
		}
	}
}

func TestScrapeAllOneTagFailingDoesNotAffectOthers(t *testing.T) {
	page := `<html><body><h2><a href="/art">Art</a></h2></body></html>`
	client := &mockHTTPClient{
		t: t,
		responses: map[string]mockResponse{
			"https://www.jota.info/tudo-sobre/stf": {body: []byte(page)},
		},
		errs: map[string]error{
			"https://www.jota.info/tudo-sobre/itcmd": errors.New("dns failure"),
		},
	}
	svc := NewService(client, Options{MaxPages: 1}, nil)

	results := svc.ScrapeAll(context.Background(), []string{"itcmd", "stf"})
	if len(results["itcmd"]) != 0 {
		t.Fatalf("failed tag must yield empty result, got %#v", results["itcmd"])
	}
	if len(results["stf"]) != 1 {
		t.Fatalf("healthy tag must proceed unaffected, got %#v", results["stf"])
	}
}
