package dataflows

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const sampleNewsHTML = `
<html><body>
<article>
  <a href="./read/abc123">story</a>
  <h3>Apple ships new hardware</h3>
  <div data-n-tid="9">Reuters</div>
  <time datetime="2026-08-28T12:00:00Z">21 hours ago</time>
  <span>Shipment numbers beat estimates.</span>
</article>
<article>
  <a href="/articles/xyz">story</a>
  <h4>Analysts weigh in on earnings</h4>
</article>
<article>
  <a href="./read/no-title">story</a>
</article>
</body></html>`

func TestParseNewsDocument(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleNewsHTML))
	if err != nil {
		t.Fatalf("failed to parse sample HTML: %v", err)
	}

	items := parseNewsDocument(doc)
	if len(items) != 2 {
		t.Fatalf("expected 2 items (titleless article skipped), got %d", len(items))
	}

	first := items[0]
	if first.Title != "Apple ships new hardware" {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.Publisher != "Reuters" {
		t.Errorf("unexpected publisher: %q", first.Publisher)
	}
	if first.Link != "https://news.google.com/read/abc123" {
		t.Errorf("unexpected link: %q", first.Link)
	}
	if first.PublishedDate.Year() != 2026 {
		t.Errorf("expected parsed datetime, got %v", first.PublishedDate)
	}

	second := items[1]
	if second.Title != "Analysts weigh in on earnings" {
		t.Errorf("expected h4 fallback title, got %q", second.Title)
	}
	if second.Publisher != "Google News" {
		t.Errorf("expected default publisher, got %q", second.Publisher)
	}
}

func TestResolveNewsLink(t *testing.T) {
	cases := map[string]string{
		"./read/abc":                       "https://news.google.com/read/abc",
		"/articles/xyz":                    "https://news.google.com/articles/xyz",
		"https://example.com/a":            "https://example.com/a",
		"https://g.co/r?url=https%3A%2F%2Fexample.com%2Fb": "https://example.com/b",
	}
	for in, want := range cases {
		if got := resolveNewsLink(in); got != want {
			t.Errorf("resolveNewsLink(%q) = %q, want %q", in, got, want)
		}
	}
}
